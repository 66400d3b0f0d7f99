package workflow

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSearchAttempts is the number of search terms tried before giving up.
	MaxSearchAttempts = 100
	// BookmarkWrites is the number of bookmarks written per loan.
	BookmarkWrites = 99
)

// TermSource supplies search terms. *words.Corpus implements it.
type TermSource interface {
	Term() string
}

// Option configures a workflow.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	attempts int
	writes   int
	now      func() time.Time
	newID    func() string
}

func newOptions(opts []Option) options {
	o := options{
		attempts: MaxSearchAttempts,
		writes:   BookmarkWrites,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxSearchAttempts overrides MaxSearchAttempts.
func WithMaxSearchAttempts(n int) Option {
	return func(o *options) {
		o.attempts = n
	}
}

// WithBookmarkWrites overrides BookmarkWrites.
func WithBookmarkWrites(n int) Option {
	return func(o *options) {
		o.writes = n
	}
}

// WithClock sets the function that stamps bookmark times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator sets the function that creates bookmark and device ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}
