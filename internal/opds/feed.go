package opds

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"
)

// Link relations consumed by the load scenarios.
const (
	RelNext              = "next"
	RelSearch            = "search"
	RelStart             = "start"
	RelCollection        = "collection"
	RelRelated           = "related"
	RelAlternate         = "alternate"
	RelBorrow            = "http://opds-spec.org/acquisition/borrow"
	RelRevoke            = "http://librarysimplified.org/terms/rel/revoke"
	RelAnnotationService = "http://www.w3.org/ns/oa#annotationService"
	RelAuthDocument      = "http://opds-spec.org/auth/document"
	RelShelf             = "http://opds-spec.org/shelf"
	RelUserProfile       = "http://librarysimplified.org/terms/rel/user-profile"
)

// MediaTypeAtom is the media type prefix of syndication feed responses.
const MediaTypeAtom = "application/atom+xml"

// ErrNotAtom is returned when a document's root element is neither a feed nor an entry.
var ErrNotAtom = errors.New("document is not an Atom feed or entry")

// Link is a typed reference from a feed or entry to another resource.
type Link struct {
	Rel  string
	Href string
	Type string
}

// Entry is a single catalog item within a feed.
type Entry struct {
	ID    string
	Title string
	Links []Link
}

// Feed is a parsed syndication document.
//
// A standalone entry document (as returned by a borrow request) is
// represented as a Feed carrying the entry's identifier and links, with the
// entry itself as the only element of Entries.
type Feed struct {
	ID      string
	Title   string
	Links   []Link
	Entries []Entry
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

type atomEntry struct {
	ID    string     `xml:"id"`
	Title string     `xml:"title"`
	Links []atomLink `xml:"link"`
}

type atomDocument struct {
	XMLName xml.Name
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

// Parse decodes an Atom feed or entry document.
// Relative link targets are resolved against baseURL when it is not empty.
func Parse(data []byte, baseURL string) (*Feed, error) {
	var base *url.URL
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		base = u
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	var doc atomDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode Atom document: %w", err)
	}

	switch doc.XMLName.Local {
	case "feed":
		feed := &Feed{
			ID:      strings.TrimSpace(doc.ID),
			Title:   strings.TrimSpace(doc.Title),
			Links:   convertLinks(doc.Links, base),
			Entries: make([]Entry, 0, len(doc.Entries)),
		}
		for _, e := range doc.Entries {
			feed.Entries = append(feed.Entries, Entry{
				ID:    strings.TrimSpace(e.ID),
				Title: strings.TrimSpace(e.Title),
				Links: convertLinks(e.Links, base),
			})
		}
		return feed, nil

	case "entry":
		entry := Entry{
			ID:    strings.TrimSpace(doc.ID),
			Title: strings.TrimSpace(doc.Title),
			Links: convertLinks(doc.Links, base),
		}
		return &Feed{
			ID:      entry.ID,
			Title:   entry.Title,
			Links:   entry.Links,
			Entries: []Entry{entry},
		}, nil
	}

	return nil, fmt.Errorf("%w: root element %q", ErrNotAtom, doc.XMLName.Local)
}

func convertLinks(in []atomLink, base *url.URL) []Link {
	links := make([]Link, 0, len(in))
	for _, l := range in {
		href := strings.TrimSpace(l.Href)
		if base != nil && href != "" {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		links = append(links, Link{
			Rel:  strings.TrimSpace(l.Rel),
			Href: href,
			Type: l.Type,
		})
	}
	return links
}

// FindLink returns the first feed-level link with the given relation.
func (f *Feed) FindLink(rel string) (Link, bool) {
	return findLink(f.Links, rel)
}

// FindLink returns the first link of the entry with the given relation.
func (e Entry) FindLink(rel string) (Link, bool) {
	return findLink(e.Links, rel)
}

// AllLinks returns the feed-level links followed by every entry's links,
// in document order.
func (f *Feed) AllLinks() []Link {
	all := make([]Link, 0, len(f.Links))
	all = append(all, f.Links...)
	for _, e := range f.Entries {
		all = append(all, e.Links...)
	}
	return all
}

func findLink(links []Link, rel string) (Link, bool) {
	for _, l := range links {
		if l.Rel == rel {
			return l, true
		}
	}
	return Link{}, false
}

// IsAtom reports whether a Content-Type header value names an Atom document.
// OPDS media types carry parameters (";profile=opds-catalog;kind=acquisition"),
// so only the prefix is compared.
func IsAtom(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), MediaTypeAtom)
}
