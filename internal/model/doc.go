// Package model defines the data shared by the runner, the sample store and
// the report writers.
//
//   - Sample: one timed scenario execution by one virtual user
//   - Summary: per-scenario latency and failure statistics of a run
//
// Design decision: Samples carry the error as text, not as an error value.
// They are stored in SQLite and written to JSON reports, and neither can
// hold a wrapped error chain.
package model
