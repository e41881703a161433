// Package database provides SQLite-based storage for methodstatus.
//
// The HistoryDB stores every generated status report with its release,
// snapshot source and digest, and released-count summary, so that later
// runs can be compared against earlier ones.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver: the
// database is a single file and the binary stays easy to cross-compile.
package database
