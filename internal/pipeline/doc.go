// Package pipeline runs load scenarios for many virtual users.
//
// Each virtual user owns a session (cookie jar, credentials, connection
// pool) and runs a Pipeline: the selected scenarios, in order. Every
// scenario execution is timed and becomes one model.Sample, failed or not.
//
// The Runner starts the virtual users with bounded concurrency and collects
// their samples into a model.Summary.
//
// Design decision: A failing scenario never fails the run. Failures are
// the measurement, so they are recorded in samples and logged, and the
// remaining virtual users keep going.
package pipeline
