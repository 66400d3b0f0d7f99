package authdoc

import (
	"context"
	"fmt"

	"github.com/nao1215/circload/internal/config"
	"github.com/nao1215/circload/internal/opds"
	"github.com/nao1215/circload/internal/session"
)

// Login fetches the catalog root feed of cm and follows its authentication
// document link.
//
//   - Without an authentication document link, a document whose catalog link
//     is the host itself is returned.
//   - A document that offers no strategy is returned without logging in.
//   - With a Basic strategy, the primary user of cm is logged in.
//   - Otherwise ErrNoSupportedAuthentication is returned.
func Login(ctx context.Context, s *session.Session, cm config.CMConfiguration) (*Document, error) {
	resp, err := s.Get(ctx, cm.Host, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root feed: %w", err)
	}
	feed, err := opds.Parse(resp.Body, resp.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse root feed: %w", err)
	}

	link, ok := feed.FindLink(opds.RelAuthDocument)
	if !ok {
		s.Logger().Debug("root feed has no authentication document", "host", cm.Host)
		return &Document{
			Links:           map[LinkPurpose]string{LinkCatalog: cm.Host},
			Authentications: map[AuthType]Authentication{},
		}, nil
	}

	resp, err = s.Get(ctx, link.Href, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch authentication document: %w", err)
	}
	doc, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	if len(doc.Offered) == 0 {
		return doc, nil
	}

	basic, ok := doc.Authentications[AuthBasic]
	if !ok {
		return nil, fmt.Errorf("%w: offered %v", ErrNoSupportedAuthentication, doc.Offered)
	}

	user, err := cm.PrimaryUser()
	if err != nil {
		return nil, err
	}
	profile, err := basic.Authenticate(ctx, s, user)
	if err != nil {
		return nil, err
	}
	doc.Profile = profile

	s.Logger().Debug("logged in",
		"user", user.Name,
		"strategy", basic.Type().String(),
		"synchronize_annotations", profile.SynchronizeAnnotations(),
	)
	return doc, nil
}
