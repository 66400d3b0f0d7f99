package pipeline

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/circload/internal/session"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, vu *VirtualUser) error
	callCount atomic.Int32
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, vu *VirtualUser) error {
	m.callCount.Add(1)
	if m.doFunc != nil {
		return m.doFunc(ctx, vu)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func newTestUser(t *testing.T, id string) *VirtualUser {
	t.Helper()

	s, err := session.New(session.WithID(id))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return &VirtualUser{RunID: "run-1", Session: s}
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})

	t.Run("keeps step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "login"})
		p.AddSteps(&mockStep{name: "feeds"}, &mockStep{name: "search"})

		if got := p.StepNames(); !slices.Equal(got, []string{"login", "feeds", "search"}) {
			t.Errorf("unexpected step names %v", got)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	errStep := errors.New("step failed")

	t.Run("records one sample per step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "login"}, &mockStep{name: "feeds"})

		samples, err := p.Execute(context.Background(), newTestUser(t, "vu-1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(samples) != 2 {
			t.Fatalf("expected 2 samples, got %d", len(samples))
		}
		for i, name := range []string{"login", "feeds"} {
			s := samples[i]
			if s.Scenario != name || s.SessionID != "vu-1" || s.RunID != "run-1" || s.Failed() {
				t.Errorf("unexpected sample %+v", s)
			}
		}
	})

	t.Run("measures step duration", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "slow", doFunc: func(context.Context, *VirtualUser) error {
			time.Sleep(20 * time.Millisecond)
			return nil
		}})

		samples, err := p.Execute(context.Background(), newTestUser(t, "vu-1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if samples[0].Duration < 20*time.Millisecond {
			t.Errorf("expected at least 20ms, got %v", samples[0].Duration)
		}
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		t.Parallel()

		after := &mockStep{name: "after"}
		p := New()
		p.AddSteps(
			&mockStep{name: "failing", doFunc: func(context.Context, *VirtualUser) error { return errStep }},
			after,
		)

		samples, err := p.Execute(context.Background(), newTestUser(t, "vu-1"))
		if !errors.Is(err, errStep) {
			t.Fatalf("expected step error, got %v", err)
		}
		if len(samples) != 1 || samples[0].Error != errStep.Error() {
			t.Errorf("expected one failed sample, got %+v", samples)
		}
		if after.callCount.Load() != 0 {
			t.Error("expected later steps to be skipped")
		}
	})

	t.Run("continues after a failure when configured", func(t *testing.T) {
		t.Parallel()

		after := &mockStep{name: "after"}
		p := New(WithContinueOnError(true))
		p.AddSteps(
			&mockStep{name: "failing", doFunc: func(context.Context, *VirtualUser) error { return errStep }},
			after,
		)

		samples, err := p.Execute(context.Background(), newTestUser(t, "vu-1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(samples) != 2 || !samples[0].Failed() || samples[1].Failed() {
			t.Errorf("unexpected samples %+v", samples)
		}
		if after.callCount.Load() != 1 {
			t.Error("expected the later step to run")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "login"}
		p := New()
		p.AddStep(step)

		samples, err := p.Execute(ctx, newTestUser(t, "vu-1"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(samples) != 0 || step.callCount.Load() != 0 {
			t.Error("expected no step to run")
		}
	})
}
