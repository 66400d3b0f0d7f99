// Package crawler traverses OPDS catalog feeds.
//
// # Components
//
//   - Pager: follows the "next" links of a paginated feed, one page at a time
//   - Walker: explores the feed graph depth-first in random order, bounded by
//     a visit cap and de-duplicated by URL
//
// Both fetch through the Fetcher interface, which *session.Session
// implements, so every request carries the virtual user's cookies and is
// subject to the session's status checking.
//
// Design decision: The Walker keeps an explicit work stack instead of
// recursing. Catalog lanes link densely to each other, and a recursive walk
// can grow as deep as the visit cap. The stack preserves the order a
// recursive walk would produce: the first shuffled candidate of a feed and its
// whole subtree are visited before the second candidate.
//
// # Usage
//
//	walker := crawler.NewWalker(s,
//	    crawler.WithMaximumVisits(10),
//	    crawler.WithAllowedRelations(opds.RelCollection, opds.RelRelated, opds.RelAlternate),
//	)
//	stats, err := walker.Execute(ctx, catalogURL)
package crawler
