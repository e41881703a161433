// Package aggregate builds the release status report.
//
// For every selected solution the Aggregator discovers the work packages
// listed on its value-added chain diagrams and the assets feeding the
// functions of the process diagrams assigned to those work packages, then
// counts totals and released elements. Each solution yields one Status row
// and one Maturity row.
//
// A run is a single sequential pass. Missing attributes, invalid elements
// and empty relations degrade to empty values; a repository failure aborts
// the run and no report is returned.
package aggregate
