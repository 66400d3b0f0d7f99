package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/circload/internal/config"
	"github.com/nao1215/circload/internal/crawler"
	"github.com/nao1215/circload/internal/opds"
	"github.com/nao1215/circload/internal/registry"
	"github.com/nao1215/circload/internal/workflow"
)

// FeedRelations are the link relations followed by the feeds scenario.
var FeedRelations = []string{opds.RelCollection, opds.RelRelated, opds.RelAlternate}

// LoginStep measures a full login.
type LoginStep struct {
	logger *slog.Logger
}

// NewLoginStep creates a LoginStep.
func NewLoginStep(logger *slog.Logger) *LoginStep {
	return &LoginStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *LoginStep) Name() string {
	return config.ScenarioLogin
}

// Do logs in even when the user is already logged in.
func (s *LoginStep) Do(ctx context.Context, vu *VirtualUser) error {
	doc, err := vu.Login(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("login completed", "session", vu.ID(), "authenticated", doc.Profile != nil)
	return nil
}

// FeedWalkStep walks the catalog at random.
type FeedWalkStep struct {
	maxVisits int
	logger    *slog.Logger
}

// NewFeedWalkStep creates a FeedWalkStep that visits at most maxVisits feeds.
func NewFeedWalkStep(maxVisits int, logger *slog.Logger) *FeedWalkStep {
	return &FeedWalkStep{maxVisits: maxVisits, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *FeedWalkStep) Name() string {
	return config.ScenarioFeeds
}

// Do walks from the catalog root.
func (s *FeedWalkStep) Do(ctx context.Context, vu *VirtualUser) error {
	_, root, err := vu.catalog(ctx)
	if err != nil {
		return err
	}
	walker := crawler.NewWalker(vu.Session,
		crawler.WithMaximumVisits(s.maxVisits),
		crawler.WithAllowedRelations(FeedRelations...),
		crawler.WithWalkerLogger(s.logger),
	)
	stats, err := walker.Execute(ctx, root)
	if err != nil {
		return err
	}
	s.logger.Debug("feed walk completed",
		"session", vu.ID(),
		"visited", stats.Visited,
		"fetched", stats.Fetched,
		"feeds", stats.Feeds,
	)
	return nil
}

// SearchStep searches for a random term and reads every result page.
type SearchStep struct {
	logger *slog.Logger
}

// NewSearchStep creates a SearchStep.
func NewSearchStep(logger *slog.Logger) *SearchStep {
	return &SearchStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return config.ScenarioSearch
}

// Do runs the search.
func (s *SearchStep) Do(ctx context.Context, vu *VirtualUser) error {
	_, root, err := vu.catalog(ctx)
	if err != nil {
		return err
	}
	template, err := workflow.FindSearchLink(ctx, vu.Session, root)
	if err != nil {
		return err
	}
	pages, err := workflow.NewSearch(template, vu.Terms, workflow.WithLogger(s.logger)).Execute(ctx, vu.Session)
	if err != nil {
		return err
	}
	s.logger.Debug("search completed", "session", vu.ID(), "pages", pages)
	return nil
}

// BookmarkStep borrows a book, writes bookmarks and returns the loan.
type BookmarkStep struct {
	opts   []workflow.Option
	logger *slog.Logger
}

// NewBookmarkStep creates a BookmarkStep. opts are passed to the workflow.
func NewBookmarkStep(logger *slog.Logger, opts ...workflow.Option) *BookmarkStep {
	logger = orDefault(logger)
	return &BookmarkStep{
		opts:   append([]workflow.Option{workflow.WithLogger(logger)}, opts...),
		logger: logger,
	}
}

// Name returns the step name.
func (s *BookmarkStep) Name() string {
	return config.ScenarioBookmark
}

// Do runs the workflow.
func (s *BookmarkStep) Do(ctx context.Context, vu *VirtualUser) error {
	doc, root, err := vu.catalog(ctx)
	if err != nil {
		return err
	}
	template, err := workflow.FindSearchLink(ctx, vu.Session, root)
	if err != nil {
		return err
	}
	result, err := workflow.NewBorrowBookmark(template, vu.Terms, s.opts...).Execute(ctx, vu.Session, doc)
	if err != nil {
		return fmt.Errorf("bookmark workflow ended in state %s: %w", result.State(), err)
	}
	s.logger.Debug("bookmark workflow completed",
		"session", vu.ID(),
		"book", result.Book.BookID,
		"attempts", result.Attempts,
		"writes", result.Writes,
	)
	return nil
}

// RegistryStep simulates an app opening against the library registry.
type RegistryStep struct {
	logger *slog.Logger
}

// NewRegistryStep creates a RegistryStep.
func NewRegistryStep(logger *slog.Logger) *RegistryStep {
	return &RegistryStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *RegistryStep) Name() string {
	return config.ScenarioRegistry
}

// Do fetches the library list and every authentication document.
func (s *RegistryStep) Do(ctx context.Context, vu *VirtualUser) error {
	result, err := registry.FirstOpen(ctx, vu.Session, vu.Settings.Registry.Host, registry.WithLogger(s.logger))
	if err != nil {
		if result != nil {
			return fmt.Errorf("%d of %d authentication documents failed: %w", result.Failures, result.Documents, err)
		}
		return err
	}
	s.logger.Debug("registry completed",
		"session", vu.ID(),
		"catalogs", result.Catalogs,
		"documents", result.Documents,
	)
	return nil
}

// NewSteps creates the steps for the named scenarios, in the given order.
func NewSteps(scenarios []string, maxVisits int, logger *slog.Logger) ([]Step, error) {
	steps := make([]Step, 0, len(scenarios))
	for _, name := range scenarios {
		switch name {
		case config.ScenarioLogin:
			steps = append(steps, NewLoginStep(logger))
		case config.ScenarioFeeds:
			steps = append(steps, NewFeedWalkStep(maxVisits, logger))
		case config.ScenarioSearch:
			steps = append(steps, NewSearchStep(logger))
		case config.ScenarioBookmark:
			steps = append(steps, NewBookmarkStep(logger))
		case config.ScenarioRegistry:
			steps = append(steps, NewRegistryStep(logger))
		default:
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownScenario, name)
		}
	}
	return steps, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
