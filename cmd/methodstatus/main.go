// Package main provides the entry point for the methodstatus CLI.
//
// methodstatus reads a snapshot of a business-process model repository and
// reports, per solution, how many work packages and assets of a release
// have reached the released state.
//
// Usage:
//
//	methodstatus report model.yaml
//	methodstatus report --markdown -o status.md model.yaml
//	methodstatus compare --release "Prime 1.2 Release (2013-12-31)"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
