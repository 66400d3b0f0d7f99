package crawler

import (
	"context"
	"errors"
	"net/http"

	"github.com/nao1215/circload/internal/session"
)

// ErrEndOfPages is returned by Pager.Next when no page is left.
var ErrEndOfPages = errors.New("no more pages")

// Fetcher performs GET requests. *session.Session implements it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*session.Response, error)
}
