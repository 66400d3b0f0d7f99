package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/circload/internal/session"
)

const (
	// MediaTypeAuthDocument is the type of authentication document links.
	MediaTypeAuthDocument = "application/vnd.opds.authentication.v1.0+json"

	// DefaultFetchLimit is the number of authentication documents fetched at once.
	DefaultFetchLimit = 10
)

// ErrNoCatalogs is returned when the library list has no "catalogs" key.
var ErrNoCatalogs = errors.New("registry response has no catalogs key")

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type link struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

type catalog struct {
	Links []link `json:"links"`
}

type libraries struct {
	Catalogs *[]catalog `json:"catalogs"`
}

// Result summarizes one FirstOpen call.
type Result struct {
	// Catalogs is the number of libraries listed by the registry.
	Catalogs int

	// Documents is the number of authentication documents requested.
	Documents int

	// Failures is the number of documents whose fetch failed.
	Failures int
}

// Option configures FirstOpen.
type Option func(*options)

type options struct {
	limit  int
	logger *slog.Logger
}

// WithFetchLimit sets how many documents are fetched concurrently.
// Non-positive values are ignored.
func WithFetchLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// FirstOpen fetches <host>/libraries and then, concurrently, the
// authentication document of every listed library. A failed document fetch
// does not stop the others: every document is requested, and the failures
// are joined into the returned error together with the Result.
func FirstOpen(ctx context.Context, s *session.Session, host string, opts ...Option) (*Result, error) {
	o := options{limit: DefaultFetchLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	listURL, err := url.JoinPath(host, "libraries")
	if err != nil {
		return nil, fmt.Errorf("invalid registry host %q: %w", host, err)
	}
	resp, err := s.Get(ctx, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch libraries: %w", err)
	}

	var list libraries
	if err := jsonAPI.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode libraries: %w", err)
	}
	if list.Catalogs == nil {
		return nil, ErrNoCatalogs
	}

	documents := authDocumentLinks(*list.Catalogs)
	o.logger.Debug("registry catalogs",
		"session", s.ID(),
		"catalogs", len(*list.Catalogs),
		"documents", len(documents),
	)

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(o.limit)
	for _, href := range documents {
		g.Go(func() error {
			if _, err := s.Get(ctx, href, nil); err != nil {
				o.logger.Warn("authentication document fetch failed", "session", s.ID(), "url", href, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("failed to fetch authentication document: %w", err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{
		Catalogs:  len(*list.Catalogs),
		Documents: len(documents),
		Failures:  len(errs),
	}
	return result, errors.Join(errs...)
}

func authDocumentLinks(catalogs []catalog) []string {
	var out []string
	for _, c := range catalogs {
		for _, l := range c.Links {
			if l.Type == MediaTypeAuthDocument && l.Href != "" {
				out = append(out, l.Href)
			}
		}
	}
	return out
}
