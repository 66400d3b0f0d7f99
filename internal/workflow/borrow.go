package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nao1215/circload/internal/authdoc"
	"github.com/nao1215/circload/internal/bookmark"
	"github.com/nao1215/circload/internal/crawler"
	"github.com/nao1215/circload/internal/opds"
	"github.com/nao1215/circload/internal/session"
)

// Book is a borrowable catalog entry. RevokeLink and AnnotationsLink stay
// empty until the loan step discovers them.
type Book struct {
	BorrowLink      string
	BookID          string
	RevokeLink      string
	AnnotationsLink string
}

// Result describes one borrow-and-bookmark run.
type Result struct {
	// Book is nil when the search failed.
	Book *Book

	// States lists the states entered, in order.
	States []State

	// Attempts is the number of search attempts made.
	Attempts int

	// Writes is the number of bookmarks written successfully.
	Writes int
}

// State returns the last state entered.
func (r *Result) State() State {
	if len(r.States) == 0 {
		return 0
	}
	return r.States[len(r.States)-1]
}

func (r *Result) enter(s State) {
	r.States = append(r.States, s)
}

// BorrowBookmark borrows a random book, writes bookmarks for it and returns
// the loan.
type BorrowBookmark struct {
	template string
	terms    TermSource
	opts     options
}

// NewBorrowBookmark creates the workflow. template is the catalog's search
// link; terms supplies the query words.
func NewBorrowBookmark(template string, terms TermSource, opts ...Option) *BorrowBookmark {
	return &BorrowBookmark{
		template: template,
		terms:    terms,
		opts:     newOptions(opts),
	}
}

// Execute runs the workflow on an authenticated session. doc supplies the
// shelf link.
func (b *BorrowBookmark) Execute(ctx context.Context, s *session.Session, doc *authdoc.Document) (result *Result, err error) {
	logger := b.opts.logger.With("session", s.ID())
	result = &Result{}

	result.enter(StateSearching)
	book, attempts, err := b.findBook(ctx, s)
	result.Attempts = attempts
	if err != nil {
		result.enter(StateFailed)
		return result, err
	}
	result.Book = book
	result.enter(StateFoundBook)
	logger.Debug("found a book", "book", book.BookID, "borrow", book.BorrowLink, "attempts", attempts)

	headers, err := s.AuthHeaders()
	if err != nil {
		result.enter(StateFailed)
		return result, fmt.Errorf("cannot borrow: %w", err)
	}

	loan, err := s.Get(ctx, book.BorrowLink, headers)
	if err != nil {
		result.enter(StateFailed)
		return result, fmt.Errorf("failed to borrow %s: %w", book.BookID, err)
	}
	result.enter(StateLoanCreated)

	defer func() {
		// The loan is released even when the caller gave up.
		revokeErr := b.revoke(context.WithoutCancel(ctx), s, book, headers, result)
		err = errors.Join(err, revokeErr)
		if err != nil {
			result.enter(StateFailed)
			return
		}
		result.enter(StateDone)
	}()

	book.RevokeLink = findRevokeLink(loan)
	if book.RevokeLink == "" {
		logger.Warn("could not find a revocation link for the loan", "book", book.BookID)
	}

	if err = b.findAnnotationService(ctx, s, doc, book, headers); err != nil {
		return result, err
	}

	result.enter(StateBookmarking)
	err = b.writeBookmarks(ctx, s, book, headers, result)
	return result, err
}

// findBook tries up to the attempt cap search terms. It returns the book and
// the number of attempts made.
func (b *BorrowBookmark) findBook(ctx context.Context, s *session.Session) (*Book, int, error) {
	for attempt := 1; attempt <= b.opts.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt - 1, err
		}
		book, err := b.searchOnce(ctx, s)
		if err != nil {
			return nil, attempt, err
		}
		if book != nil {
			return book, attempt, nil
		}
		b.opts.logger.Debug("no borrowable book in results", "session", s.ID(), "attempt", attempt)
	}
	return nil, b.opts.attempts, fmt.Errorf("%w after %d attempts", ErrWorkflowExhausted, b.opts.attempts)
}

// searchOnce runs one query from the first page and stops at the first entry
// with a borrow link.
func (b *BorrowBookmark) searchOnce(ctx context.Context, s *session.Session) (*Book, error) {
	query := searchQuery(b.template, b.terms.Term())
	b.opts.logger.Debug("search", "session", s.ID(), "query", query)

	header := searchHeader(s)
	first, err := searchFirstPage(ctx, s, query, header)
	if err != nil || first == nil {
		return nil, err
	}

	var book *Book
	err = crawler.NewPager(s, first, crawler.WithPagerHeader(header)).Walk(ctx, func(page *opds.Feed) (bool, error) {
		for _, entry := range page.Entries {
			if link, ok := entry.FindLink(opds.RelBorrow); ok {
				book = &Book{BorrowLink: link.Href, BookID: entry.ID}
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// findRevokeLink returns the revoke link of a borrow response, or "" when the
// response carries none.
func findRevokeLink(resp *session.Response) string {
	entry, err := opds.Parse(resp.Body, resp.URL)
	if err != nil {
		return ""
	}
	for _, l := range entry.AllLinks() {
		if l.Rel == opds.RelRevoke {
			return l.Href
		}
	}
	return ""
}

func (b *BorrowBookmark) findAnnotationService(ctx context.Context, s *session.Session, doc *authdoc.Document, book *Book, headers http.Header) error {
	shelf, ok := doc.Link(authdoc.LinkShelf)
	if !ok {
		return ErrMissingShelfLink
	}
	resp, err := s.Get(ctx, shelf, headers)
	if err != nil {
		return fmt.Errorf("failed to fetch loans: %w", err)
	}
	loans, err := opds.Parse(resp.Body, resp.URL)
	if err != nil {
		return fmt.Errorf("failed to parse loans: %w", err)
	}
	if link, ok := loans.FindLink(opds.RelAnnotationService); ok {
		book.AnnotationsLink = link.Href
	}
	return nil
}

// writeBookmarks posts the bookmarks. The bookmark and device ids are the
// same for every write; only the page and time change.
func (b *BorrowBookmark) writeBookmarks(ctx context.Context, s *session.Session, book *Book, headers http.Header, result *Result) error {
	if book.AnnotationsLink == "" {
		return fmt.Errorf("%w: book %s", ErrMissingAnnotationLink, book.BookID)
	}

	bookmarkID := b.opts.newID()
	deviceID := b.opts.newID()
	header := headers.Clone()
	header.Set("Content-Type", bookmark.ContentTypeJSONLD)

	b.opts.logger.Debug("writing bookmarks", "session", s.ID(), "book", book.BookID, "count", b.opts.writes)
	for write := 1; write <= b.opts.writes; write++ {
		mark := bookmark.Bookmark{
			ID: bookmarkID,
			Target: bookmark.Target{
				Locator: bookmark.Page{Page: write},
				Source:  book.BookID,
			},
			Motivation: bookmark.Bookmarking,
			Body: bookmark.Body{
				DeviceID: deviceID,
				Time:     b.opts.now().Format(bookmark.TimestampLayout),
			},
		}
		body, err := bookmark.Marshal(mark)
		if err != nil {
			return fmt.Errorf("failed to serialize bookmark %d: %w", write, err)
		}
		if _, err := s.Post(ctx, book.AnnotationsLink, body, header); err != nil {
			return fmt.Errorf("bookmark write %d failed: %w", write, err)
		}
		result.Writes++
	}
	return nil
}

func (b *BorrowBookmark) revoke(ctx context.Context, s *session.Session, book *Book, headers http.Header, result *Result) error {
	if book.RevokeLink == "" {
		result.enter(StateRevokeSkipped)
		return nil
	}
	b.opts.logger.Debug("revoking loan", "session", s.ID(), "revoke", book.RevokeLink)
	if _, err := s.Get(ctx, book.RevokeLink, headers); err != nil {
		return fmt.Errorf("failed to revoke loan of %s: %w", book.BookID, err)
	}
	result.enter(StateRevoked)
	return nil
}
