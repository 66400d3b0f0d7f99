// Package database provides SQLite-based storage for load run results.
//
// SampleDB stores:
//   - every scenario sample recorded during a run
//   - one summary per finished run, for the history command
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// database is a single local file and the driver needs no CGO. WAL mode lets
// the history command read while a run is writing.
package database
