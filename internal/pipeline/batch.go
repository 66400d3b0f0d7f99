package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/circload/internal/model"
)

// DefaultConcurrency is the number of virtual users run at once when no
// limit is configured.
const DefaultConcurrency = 10

// Recorder persists samples. *database.SampleDB implements it.
type Recorder interface {
	RecordSamples(ctx context.Context, samples []model.Sample) error
}

// UserFactory creates the virtual user with the given index.
// runID is the id of the run the user belongs to.
type UserFactory func(ctx context.Context, runID string, index int) (*VirtualUser, error)

// Runner starts virtual users with bounded concurrency.
type Runner struct {
	// pipelineFactory creates the pipeline of each virtual user.
	pipelineFactory func() *Pipeline

	userFactory UserFactory

	concurrency int

	logger *slog.Logger

	// recorder receives each user's samples when the user finishes.
	recorder Recorder

	runID string

	now func() time.Time

	mu      sync.Mutex
	samples []model.Sample
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithConcurrency sets the maximum number of virtual users run at once.
// Non-positive values are ignored.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRecorder persists samples as users finish.
func WithRecorder(recorder Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// WithRunID sets the run id. By default a random UUID is used.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner creates a Runner.
func NewRunner(pipelineFactory func() *Pipeline, userFactory UserFactory, opts ...RunnerOption) *Runner {
	r := &Runner{
		pipelineFactory: pipelineFactory,
		userFactory:     userFactory,
		concurrency:     DefaultConcurrency,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	return r
}

// RunID returns the run id.
func (r *Runner) RunID() string {
	return r.runID
}

// Run starts sessions virtual users and waits for all of them.
//
// Scenario failures are recorded in the samples and do not stop the run.
// Run returns an error only when a virtual user cannot be created or ctx is
// cancelled; the summary then covers the samples collected so far.
func (r *Runner) Run(ctx context.Context, sessions int) (*model.Summary, error) {
	r.logger.Info("starting load run",
		"run", r.runID,
		"sessions", sessions,
		"concurrency", r.concurrency,
	)

	startedAt := r.now()
	r.samples = make([]model.Sample, 0, sessions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range sessions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vu, err := r.userFactory(gctx, r.runID, i)
			if err != nil {
				return fmt.Errorf("failed to create virtual user %d: %w", i, err)
			}

			samples, err := r.pipelineFactory().Execute(gctx, vu)
			r.collect(gctx, samples)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	elapsed := r.now().Sub(startedAt)

	r.mu.Lock()
	summary := model.Summarize(r.runID, startedAt, elapsed, sessions, r.samples)
	r.mu.Unlock()

	r.logger.Info("load run complete",
		"run", r.runID,
		"samples", summary.Total,
		"failures", summary.Failures,
		"elapsed", elapsed,
	)
	return summary, err
}

// Samples returns a copy of the samples collected by the last Run.
func (r *Runner) Samples() []model.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Sample(nil), r.samples...)
}

func (r *Runner) collect(ctx context.Context, samples []model.Sample) {
	if len(samples) == 0 {
		return
	}

	r.mu.Lock()
	r.samples = append(r.samples, samples...)
	r.mu.Unlock()

	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordSamples(context.WithoutCancel(ctx), samples); err != nil {
		r.logger.Warn("failed to record samples", "run", r.runID, "error", err)
	}
}
