package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/circload/internal/model"
)

// Step is one scenario.
type Step interface {
	// Do runs the scenario for vu. A returned error marks the sample as
	// failed.
	Do(ctx context.Context, vu *VirtualUser) error

	// Name returns the scenario name used in samples and logs.
	Name() string
}

// Pipeline runs steps in order for one virtual user.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError runs the remaining steps after a failure.
	continueOnError bool

	now func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running steps after one fails. By default the
// pipeline stops at the first failure.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps for vu and returns one sample per step run.
//
// Cancellation is checked between steps only. The returned error is the
// context error or, without WithContinueOnError, the first step error.
func (p *Pipeline) Execute(ctx context.Context, vu *VirtualUser) ([]model.Sample, error) {
	samples := make([]model.Sample, 0, len(p.steps))

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"session", vu.ID(),
				"reason", err,
			)
			return samples, err
		}

		p.logger.Debug("executing step", "step", step.Name(), "session", vu.ID())

		start := p.now()
		err := step.Do(ctx, vu)
		elapsed := p.now().Sub(start)
		samples = append(samples, model.NewSample(vu.RunID, vu.ID(), step.Name(), start, elapsed, err))

		if err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"session", vu.ID(),
				"duration", elapsed,
				"error", err,
			)
			if !p.continueOnError {
				return samples, err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"session", vu.ID(),
			"duration", elapsed,
		)
	}

	return samples, nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
