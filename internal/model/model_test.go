package model

import (
	"errors"
	"testing"
	"time"
)

func TestNewSample(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		s := NewSample("run", "vu-1", "login", start, time.Second, nil)
		if s.Failed() || s.Error != "" {
			t.Errorf("expected a successful sample, got %+v", s)
		}
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		s := NewSample("run", "vu-1", "login", start, time.Second, errors.New("boom"))
		if !s.Failed() || s.Error != "boom" {
			t.Errorf("expected a failed sample, got %+v", s)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }

	var samples []Sample
	for i := 1; i <= 20; i++ {
		var err error
		if i%10 == 0 {
			err = errors.New("GET /loans: unexpected status 500")
		}
		samples = append(samples, NewSample("run", "vu", "bookmark", start, ms(i*10), err))
	}
	samples = append(samples,
		NewSample("run", "vu", "login", start, ms(30), nil),
		NewSample("run", "vu", "login", start, ms(10), errors.New("timeout")),
	)

	summary := Summarize("run", start, 2*time.Second, 3, samples)

	if summary.Total != 22 || summary.Failures != 3 {
		t.Errorf("unexpected totals: %d samples, %d failures", summary.Total, summary.Failures)
	}
	if !summary.Failed() {
		t.Error("expected the run to be failed")
	}
	if got := summary.Throughput(); got != 11 {
		t.Errorf("expected throughput 11/s, got %v", got)
	}
	if len(summary.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(summary.Scenarios))
	}

	bookmark := summary.Scenarios[0]
	if bookmark.Scenario != "bookmark" {
		t.Fatalf("expected scenarios sorted by name, got %s first", bookmark.Scenario)
	}
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"min", bookmark.Min, ms(10)},
		{"max", bookmark.Max, ms(200)},
		{"mean", bookmark.Mean, ms(105)},
		{"p50", bookmark.P50, ms(100)},
		{"p95", bookmark.P95, ms(190)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
	if bookmark.Failures != 2 || bookmark.FailureRate() != 0.1 {
		t.Errorf("unexpected failures %d (%v)", bookmark.Failures, bookmark.FailureRate())
	}

	if len(summary.Errors) != 2 {
		t.Fatalf("expected 2 distinct errors, got %v", summary.Errors)
	}
	if summary.Errors[0].Count != 2 || summary.Errors[0].Scenario != "bookmark" {
		t.Errorf("expected the most frequent error first, got %+v", summary.Errors[0])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	summary := Summarize("run", time.Now(), 0, 0, nil)
	if summary.Total != 0 || len(summary.Scenarios) != 0 || summary.Failed() {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.Throughput() != 0 {
		t.Error("expected zero throughput for an empty run")
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	sorted := []time.Duration{1, 2, 3, 4}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1},
		{25, 1},
		{50, 2},
		{75, 3},
		{100, 4},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("p%v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}
