package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nao1215/circload/internal/opds"
)

// Pager is a lazy, forward-only sequence of feed pages linked by the "next"
// relation. Each page is fetched once, when Next asks for it. A Pager cannot
// be restarted.
type Pager struct {
	fetcher Fetcher
	header  http.Header
	first   *opds.Feed
	current *opds.Feed
	done    bool
	fetched int
}

// PagerOption configures a Pager.
type PagerOption func(*Pager)

// WithPagerHeader sets headers sent with every page request.
func WithPagerHeader(header http.Header) PagerOption {
	return func(p *Pager) {
		p.header = header
	}
}

// NewPager creates a Pager whose first page is first.
func NewPager(fetcher Fetcher, first *opds.Feed, opts ...PagerOption) *Pager {
	p := &Pager{
		fetcher: fetcher,
		first:   first,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next returns the next page. The first call returns the first page without
// fetching anything. When the current page has no "next" link, Next returns
// ErrEndOfPages, and keeps returning it on every later call. A fetch or parse
// error also ends the sequence.
func (p *Pager) Next(ctx context.Context) (*opds.Feed, error) {
	if p.done {
		return nil, ErrEndOfPages
	}
	if p.current == nil {
		if p.first == nil {
			p.done = true
			return nil, ErrEndOfPages
		}
		p.current = p.first
		return p.current, nil
	}

	link, ok := p.current.FindLink(opds.RelNext)
	if !ok {
		p.done = true
		return nil, ErrEndOfPages
	}

	resp, err := p.fetcher.Get(ctx, link.Href, p.header)
	if err != nil {
		p.done = true
		return nil, fmt.Errorf("failed to fetch next page: %w", err)
	}
	feed, err := opds.Parse(resp.Body, resp.URL)
	if err != nil {
		p.done = true
		return nil, fmt.Errorf("failed to parse page %s: %w", link.Href, err)
	}
	p.fetched++
	p.current = feed
	return feed, nil
}

// Fetched returns the number of pages fetched so far. The first page is not
// counted because the Pager was given it.
func (p *Pager) Fetched() int {
	return p.fetched
}

// Walk calls fn for each page in order until fn returns true, fn fails, or
// the pages run out. Running out of pages is not an error.
func (p *Pager) Walk(ctx context.Context, fn func(*opds.Feed) (stop bool, err error)) error {
	for {
		page, err := p.Next(ctx)
		if errors.Is(err, ErrEndOfPages) {
			return nil
		}
		if err != nil {
			return err
		}
		stop, err := fn(page)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}
