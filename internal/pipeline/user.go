package pipeline

import (
	"context"
	"errors"

	"github.com/nao1215/circload/internal/authdoc"
	"github.com/nao1215/circload/internal/config"
	"github.com/nao1215/circload/internal/session"
	"github.com/nao1215/circload/internal/workflow"
)

// ErrNoCatalogLink is returned when a login produced no catalog link.
var ErrNoCatalogLink = errors.New("authentication document has no catalog link")

// VirtualUser is the state of one simulated patron.
// It is used by one goroutine at a time.
type VirtualUser struct {
	// RunID identifies the run the user belongs to.
	RunID string

	// Session carries the user's cookies and credentials.
	Session *session.Session

	// Settings describes the systems under test. Shared and read-only.
	Settings *config.Settings

	// Terms supplies search terms. Shared and read-only.
	Terms workflow.TermSource

	// Document is the authentication document of the last login.
	Document *authdoc.Document
}

// ID returns the session id.
func (vu *VirtualUser) ID() string {
	return vu.Session.ID()
}

// Login logs in to the circulation manager and keeps the document.
func (vu *VirtualUser) Login(ctx context.Context) (*authdoc.Document, error) {
	doc, err := authdoc.Login(ctx, vu.Session, vu.Settings.CirculationManager)
	if err != nil {
		return nil, err
	}
	vu.Document = doc
	return doc, nil
}

// document returns the document of an earlier login, logging in first when
// there was none.
func (vu *VirtualUser) document(ctx context.Context) (*authdoc.Document, error) {
	if vu.Document != nil {
		return vu.Document, nil
	}
	return vu.Login(ctx)
}

// catalog logs in when needed and returns the catalog root URL.
func (vu *VirtualUser) catalog(ctx context.Context) (*authdoc.Document, string, error) {
	doc, err := vu.document(ctx)
	if err != nil {
		return nil, "", err
	}
	root, ok := doc.Link(authdoc.LinkCatalog)
	if !ok {
		return nil, "", ErrNoCatalogLink
	}
	return doc, root, nil
}
