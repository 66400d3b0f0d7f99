package bookmark

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// JSON-LD terms of the annotation envelope.
const (
	AnnotationContext = "http://www.w3.org/ns/anno.jsonld"
	AnnotationType    = "Annotation"
	TermTime          = "http://librarysimplified.org/terms/time"
	TermDevice        = "http://librarysimplified.org/terms/device"
	MotivationURI     = "http://www.w3.org/ns/oa#bookmarking"
	IdlingURI         = "http://librarysimplified.org/terms/annotation/idling"
	FragmentSelector  = "oa:FragmentSelector"
	ContentTypeJSONLD = `application/ld+json; profile="http://www.w3.org/ns/anno.jsonld"`
	TimestampLayout   = "2006-01-02T15:04:05-0700"
)

// ErrNoLocator is returned when a target has no locator to serialize.
var ErrNoLocator = errors.New("bookmark target has no locator")

// wire is the codec for every element. Sorted keys keep the output stable,
// which matters because the locator is embedded as a string.
var wire = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal serializes an element to its JSON wire form.
func Marshal(e Element) ([]byte, error) {
	form, err := e.WireForm()
	if err != nil {
		return nil, err
	}
	return wire.Marshal(form)
}

// Motivation is the reason an annotation was created.
type Motivation int

const (
	// Bookmarking marks an explicit user bookmark.
	Bookmarking Motivation = iota + 1
	// Idling marks the last read position recorded while idle.
	Idling
)

// String returns the annotation vocabulary term for the motivation.
func (m Motivation) String() string {
	switch m {
	case Bookmarking:
		return MotivationURI
	case Idling:
		return IdlingURI
	default:
		return "unknown"
	}
}

// Target ties a locator to the book it points into.
type Target struct {
	Locator Locator
	Source  string
}

// WireForm implements Element. The locator is embedded as a JSON-encoded
// string inside a fragment selector.
func (t Target) WireForm() (map[string]any, error) {
	if t.Locator == nil {
		return nil, ErrNoLocator
	}
	value, err := Marshal(t.Locator)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize locator: %w", err)
	}
	return map[string]any{
		"selector": map[string]any{
			"type":  FragmentSelector,
			"value": string(value),
		},
		"source": t.Source,
	}, nil
}

// Body carries the device and time the annotation was made on.
type Body struct {
	DeviceID string
	Time     string
}

// WireForm implements Element.
func (b Body) WireForm() (map[string]any, error) {
	return map[string]any{
		TermTime:   b.Time,
		TermDevice: b.DeviceID,
	}, nil
}

// Bookmark is the annotation envelope posted to an annotation service.
type Bookmark struct {
	ID         string
	Target     Target
	Motivation Motivation
	Body       Body
}

// WireForm implements Element.
// The motivation is always written as the bookmarking term: the annotation
// service only accepts bookmarks on this endpoint.
func (b Bookmark) WireForm() (map[string]any, error) {
	target, err := b.Target.WireForm()
	if err != nil {
		return nil, err
	}
	body, err := b.Body.WireForm()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"@context":   AnnotationContext,
		"type":       AnnotationType,
		"id":         b.ID,
		"body":       body,
		"motivation": MotivationURI,
		"target":     target,
	}, nil
}
