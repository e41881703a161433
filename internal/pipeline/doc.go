// Package pipeline runs status report generation as a sequence of steps.
//
// A report run loads a model snapshot, aggregates the Status and Maturity
// tables, writes them in the requested format and records them in the
// history database. Each stage is a Step operating on a shared Run, which
// keeps error handling and logging consistent across stages and lets
// callers drop stages (for example history) without touching the others.
//
// BatchProcessor runs one pipeline per snapshot file with a concurrency
// limit enforced by errgroup.
package pipeline
