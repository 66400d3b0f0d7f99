package workflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nao1215/circload/internal/crawler"
	"github.com/nao1215/circload/internal/opds"
	"github.com/nao1215/circload/internal/session"
)

// FindSearchLink returns the search link of the catalog feed at rootURL.
func FindSearchLink(ctx context.Context, s *session.Session, rootURL string) (string, error) {
	resp, err := s.Get(ctx, rootURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch catalog root: %w", err)
	}
	if !opds.IsAtom(resp.Header.Get("Content-Type")) {
		return "", fmt.Errorf("%w: %s is %q", ErrNoSearchLink, rootURL, resp.ContentType())
	}
	feed, err := opds.Parse(resp.Body, resp.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse catalog root: %w", err)
	}
	link, ok := feed.FindLink(opds.RelSearch)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSearchLink, rootURL)
	}
	return link.Href, nil
}

// searchQuery appends a query term to a search template.
func searchQuery(template, term string) string {
	return template + "&q=" + url.QueryEscape(term)
}

// searchHeader returns the credentials sent with search requests. Circulation
// managers personalize feeds for a signed in patron, so authenticated sessions
// search as that patron on every result page.
func searchHeader(s *session.Session) http.Header {
	header, err := s.AuthHeaders()
	if err != nil {
		return nil
	}
	return header
}

// searchFirstPage runs one query. It returns nil when the response is not a
// feed.
func searchFirstPage(ctx context.Context, s *session.Session, query string, header http.Header) (*opds.Feed, error) {
	resp, err := s.Get(ctx, query, header)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if !opds.IsAtom(resp.Header.Get("Content-Type")) {
		s.Logger().Debug("search returned a non feed document",
			"query", query,
			"content_type", resp.ContentType(),
		)
		return nil, nil
	}
	feed, err := opds.Parse(resp.Body, resp.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}
	return feed, nil
}

// Search runs one random query and reads every result page.
type Search struct {
	template string
	terms    TermSource
	opts     options
}

// NewSearch creates a Search over the search template.
func NewSearch(template string, terms TermSource, opts ...Option) *Search {
	return &Search{
		template: template,
		terms:    terms,
		opts:     newOptions(opts),
	}
}

// Execute runs the search and returns the number of result pages read.
func (sr *Search) Execute(ctx context.Context, s *session.Session) (int, error) {
	query := searchQuery(sr.template, sr.terms.Term())
	sr.opts.logger.Debug("search", "session", s.ID(), "query", query)

	header := searchHeader(s)
	first, err := searchFirstPage(ctx, s, query, header)
	if err != nil || first == nil {
		return 0, err
	}

	pages := 0
	err = crawler.NewPager(s, first, crawler.WithPagerHeader(header)).Walk(ctx, func(*opds.Feed) (bool, error) {
		pages++
		return false, nil
	})
	if err != nil {
		return pages, err
	}
	sr.opts.logger.Debug("search finished", "session", s.ID(), "pages", pages)
	return pages, nil
}
