package authdoc

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/nao1215/circload/internal/config"
	"github.com/nao1215/circload/internal/opds"
	"github.com/nao1215/circload/internal/session"
)

// TypeBasic is the authentication type URI of HTTP Basic authentication.
const TypeBasic = "http://opds-spec.org/auth/basic"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// LinkPurpose identifies what a document link is used for.
type LinkPurpose int

const (
	// LinkCatalog is the catalog root (rel "start").
	LinkCatalog LinkPurpose = iota + 1
	// LinkUserProfile is the patron profile document.
	LinkUserProfile
	// LinkShelf is the patron's loans feed.
	LinkShelf
)

// String returns the name of the purpose.
func (p LinkPurpose) String() string {
	switch p {
	case LinkCatalog:
		return "catalog"
	case LinkUserProfile:
		return "user-profile"
	case LinkShelf:
		return "shelf"
	default:
		return "unknown"
	}
}

// linkPurposes maps document link relations to purposes.
var linkPurposes = map[string]LinkPurpose{
	opds.RelStart:       LinkCatalog,
	opds.RelShelf:       LinkShelf,
	opds.RelUserProfile: LinkUserProfile,
}

// AuthType identifies an authentication strategy.
type AuthType int

const (
	// AuthBasic is HTTP Basic authentication.
	AuthBasic AuthType = iota + 1
)

// String returns the name of the strategy.
func (t AuthType) String() string {
	switch t {
	case AuthBasic:
		return "basic"
	default:
		return "unknown"
	}
}

// Authentication is a strategy for logging a patron in.
type Authentication interface {
	// Type returns the strategy type.
	Type() AuthType

	// Authenticate logs user in on s. On success the session carries the
	// strategy's credentials for later requests.
	Authenticate(ctx context.Context, s *session.Session, user config.CMUser) (*PatronProfile, error)
}

// Document is a parsed authentication document.
type Document struct {
	// Links holds at most one URL per purpose.
	Links map[LinkPurpose]string

	// Authentications holds the supported strategies offered by the server.
	Authentications map[AuthType]Authentication

	// Offered lists the type URI of every strategy in the document,
	// supported or not, in document order.
	Offered []string

	// Profile is the patron profile fetched by Login. It is nil when no
	// authentication took place.
	Profile *PatronProfile
}

// Link returns the URL for purpose.
func (d *Document) Link(purpose LinkPurpose) (string, bool) {
	href, ok := d.Links[purpose]
	return href, ok && href != ""
}

type rawLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type rawAuthentication struct {
	Type string `json:"type"`
}

type rawDocument struct {
	Links          []rawLink           `json:"links"`
	Authentication []rawAuthentication `json:"authentication"`
}

// Parse decodes an authentication document.
//
// Links with the relations "start", shelf and user-profile are recorded;
// the last one wins when a relation repeats. Strategies of unknown type are
// ignored. A Basic strategy requires a user-profile link.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode authentication document: %w", err)
	}

	doc := &Document{
		Links:           make(map[LinkPurpose]string),
		Authentications: make(map[AuthType]Authentication),
	}
	for _, l := range raw.Links {
		if purpose, ok := linkPurposes[l.Rel]; ok {
			doc.Links[purpose] = l.Href
		}
	}

	for _, a := range raw.Authentication {
		doc.Offered = append(doc.Offered, a.Type)
		switch a.Type {
		case TypeBasic:
			profile, ok := doc.Link(LinkUserProfile)
			if !ok {
				return nil, fmt.Errorf("%w: rel %s", ErrMissingLink, opds.RelUserProfile)
			}
			doc.Authentications[AuthBasic] = NewBasic(profile)
		}
	}

	return doc, nil
}
