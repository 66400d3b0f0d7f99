package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/nao1215/circload/internal/opds"
)

// DefaultMaximumVisits is the visit cap used when none is configured.
const DefaultMaximumVisits = 10

// Walker explores a feed graph depth-first with randomized branch order.
//
// A Walker is used by one goroutine at a time. Its visited set is reset at
// the start of each Execute call.
type Walker struct {
	fetcher Fetcher

	// maximumVisits bounds the visited set, including the start URL.
	maximumVisits int

	// allowed holds the link relations that are followed.
	allowed map[string]struct{}

	// random shuffles candidate links. nil uses the global source.
	random *rand.Rand

	logger *slog.Logger

	visited map[string]struct{}
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithMaximumVisits sets the visit cap.
func WithMaximumVisits(n int) WalkerOption {
	return func(w *Walker) {
		w.maximumVisits = n
	}
}

// WithAllowedRelations sets the link relations that are followed.
func WithAllowedRelations(rels ...string) WalkerOption {
	return func(w *Walker) {
		w.allowed = make(map[string]struct{}, len(rels))
		for _, rel := range rels {
			w.allowed[rel] = struct{}{}
		}
	}
}

// WithRandom sets the random source used to shuffle candidates.
func WithRandom(r *rand.Rand) WalkerOption {
	return func(w *Walker) {
		w.random = r
	}
}

// WithWalkerLogger sets the logger.
func WithWalkerLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker. Without WithAllowedRelations no link is
// followed and only the start URL is fetched.
func NewWalker(fetcher Fetcher, opts ...WalkerOption) *Walker {
	w := &Walker{
		fetcher:       fetcher,
		maximumVisits: DefaultMaximumVisits,
		allowed:       map[string]struct{}{},
		visited:       map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// WalkStats summarizes one Execute call.
type WalkStats struct {
	// Visited is the number of distinct URLs marked as visited.
	Visited int

	// Fetched is the number of requests made.
	Fetched int

	// Feeds is the number of fetched documents parsed as feeds.
	Feeds int
}

// Execute walks the graph starting at startURL.
//
// For each URL taken from the work stack:
//  1. An already visited URL is skipped.
//  2. The URL is marked visited. If the visited set has reached the cap the
//     URL is not fetched and the walk ends, since every later URL would be
//     skipped as well.
//  3. The URL is fetched. Only Atom documents are parsed; anything else is
//     a dead end.
//  4. Feed and entry links with an allowed relation are shuffled and pushed
//     so that the first of them is taken next.
//
// A fetch error stops the walk and is returned with the stats so far.
func (w *Walker) Execute(ctx context.Context, startURL string) (WalkStats, error) {
	w.visited = make(map[string]struct{})
	var stats WalkStats

	stack := []string{startURL}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		link := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := normalizeURL(link)
		if _, seen := w.visited[key]; seen {
			continue
		}
		w.visited[key] = struct{}{}
		stats.Visited = len(w.visited)
		if len(w.visited) >= w.maximumVisits {
			w.logger.Debug("walk cap reached", "visited", len(w.visited))
			break
		}

		w.logger.Debug("walk", "url", link)
		resp, err := w.fetcher.Get(ctx, link, nil)
		if err != nil {
			return stats, fmt.Errorf("walk failed at %s: %w", link, err)
		}
		stats.Fetched++

		if !opds.IsAtom(resp.Header.Get("Content-Type")) {
			continue
		}
		feed, err := opds.Parse(resp.Body, resp.URL)
		if err != nil {
			return stats, fmt.Errorf("walk failed at %s: %w", link, err)
		}
		stats.Feeds++

		candidates := w.candidates(feed)
		w.shuffle(candidates)
		w.logger.Debug("walk candidates", "url", link, "count", len(candidates))
		for i := len(candidates) - 1; i >= 0; i-- {
			stack = append(stack, candidates[i])
		}
	}

	return stats, nil
}

// Visited reports whether url was visited by the last Execute call.
func (w *Walker) Visited(rawURL string) bool {
	_, ok := w.visited[normalizeURL(rawURL)]
	return ok
}

func (w *Walker) candidates(feed *opds.Feed) []string {
	var out []string
	for _, l := range feed.AllLinks() {
		if _, ok := w.allowed[l.Rel]; ok && l.Href != "" {
			out = append(out, l.Href)
		}
	}
	return out
}

func (w *Walker) shuffle(links []string) {
	swap := func(i, j int) { links[i], links[j] = links[j], links[i] }
	if w.random != nil {
		w.random.Shuffle(len(links), swap)
		return
	}
	rand.Shuffle(len(links), swap)
}

// normalizeURL normalizes a URL for deduplication.
// The fragment is dropped and scheme and host are lowercased, so
// "https://CM.example.com/groups#top" and "https://cm.example.com/groups"
// count as one visit.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
