package model

import "time"

// Sample is the outcome of one scenario execution.
type Sample struct {
	// RunID identifies the circload run.
	RunID string `json:"run_id"`

	// SessionID identifies the virtual user.
	SessionID string `json:"session_id"`

	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Start is when the scenario started.
	Start time.Time `json:"start"`

	// Duration is how long the scenario took, failed or not.
	Duration time.Duration `json:"duration"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`
}

// NewSample creates a Sample. A nil err records a success.
func NewSample(runID, sessionID, scenario string, start time.Time, duration time.Duration, err error) Sample {
	s := Sample{
		RunID:     runID,
		SessionID: sessionID,
		Scenario:  scenario,
		Start:     start,
		Duration:  duration,
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// Failed reports whether the scenario failed.
func (s Sample) Failed() bool {
	return s.Error != ""
}
