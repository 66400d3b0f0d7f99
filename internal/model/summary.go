package model

import (
	"math"
	"slices"
	"strings"
	"time"
)

// ScenarioStats aggregates the samples of one scenario.
type ScenarioStats struct {
	Scenario string        `json:"scenario"`
	Count    int           `json:"count"`
	Failures int           `json:"failures"`
	Min      time.Duration `json:"min"`
	Mean     time.Duration `json:"mean"`
	P50      time.Duration `json:"p50"`
	P95      time.Duration `json:"p95"`
	Max      time.Duration `json:"max"`
}

// FailureRate returns the share of failed samples, from 0 to 1.
func (s ScenarioStats) FailureRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Count)
}

// ErrorCount is a distinct failure message and how often it occurred.
type ErrorCount struct {
	Scenario string `json:"scenario"`
	Message  string `json:"message"`
	Count    int    `json:"count"`
}

// Summary describes a whole run.
type Summary struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Elapsed   time.Duration   `json:"elapsed"`
	Sessions  int             `json:"sessions"`
	Total     int             `json:"total"`
	Failures  int             `json:"failures"`
	Scenarios []ScenarioStats `json:"scenarios"`
	Errors    []ErrorCount    `json:"errors,omitempty"`
}

// Failed reports whether any sample failed.
func (s *Summary) Failed() bool {
	return s.Failures > 0
}

// Throughput returns the number of scenario executions per second.
func (s *Summary) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total) / s.Elapsed.Seconds()
}

// Summarize aggregates samples. Scenarios are sorted by name and errors by
// descending count.
func Summarize(runID string, startedAt time.Time, elapsed time.Duration, sessions int, samples []Sample) *Summary {
	summary := &Summary{
		RunID:     runID,
		StartedAt: startedAt,
		Elapsed:   elapsed,
		Sessions:  sessions,
		Total:     len(samples),
	}

	durations := map[string][]time.Duration{}
	failures := map[string]int{}
	type errorKey struct{ scenario, message string }
	errs := map[errorKey]int{}

	for _, s := range samples {
		durations[s.Scenario] = append(durations[s.Scenario], s.Duration)
		if s.Failed() {
			summary.Failures++
			failures[s.Scenario]++
			errs[errorKey{s.Scenario, s.Error}]++
		}
	}

	for scenario, ds := range durations {
		summary.Scenarios = append(summary.Scenarios, newScenarioStats(scenario, ds, failures[scenario]))
	}
	slices.SortFunc(summary.Scenarios, func(a, b ScenarioStats) int {
		return strings.Compare(a.Scenario, b.Scenario)
	})

	for key, count := range errs {
		summary.Errors = append(summary.Errors, ErrorCount{Scenario: key.scenario, Message: key.message, Count: count})
	}
	slices.SortFunc(summary.Errors, func(a, b ErrorCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Scenario != b.Scenario {
			return strings.Compare(a.Scenario, b.Scenario)
		}
		return strings.Compare(a.Message, b.Message)
	})

	return summary
}

func newScenarioStats(scenario string, ds []time.Duration, failures int) ScenarioStats {
	slices.Sort(ds)

	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return ScenarioStats{
		Scenario: scenario,
		Count:    len(ds),
		Failures: failures,
		Min:      ds[0],
		Mean:     total / time.Duration(len(ds)),
		P50:      percentile(ds, 50),
		P95:      percentile(ds, 95),
		Max:      ds[len(ds)-1],
	}
}

// percentile returns the nearest-rank percentile of sorted durations.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	rank = max(rank, 1)
	return sorted[min(rank, len(sorted))-1]
}
