package bookmark

// Element is anything that has a fixed JSON wire form.
type Element interface {
	// WireForm returns the JSON object representation of the element.
	WireForm() (map[string]any, error)
}

// Locator is a position within a book.
// The concrete variants are LegacyCFI, HrefProgression, Page and AudioBookTime.
type Locator interface {
	Element

	// LocatorType returns the "@type" discriminator of the variant.
	LocatorType() string
}

// Locator type discriminators.
const (
	TypeLegacyCFI       = "LocatorLegacyCFI"
	TypeHrefProgression = "LocatorHrefProgression"
	TypePage            = "LocatorPage"
	TypeAudioBookTime   = "LocatorAudioBookTime"
)

// LegacyCFI locates a position with an EPUB canonical fragment identifier.
// Unset fields are written as JSON null.
type LegacyCFI struct {
	IDRef       *string
	CFI         *string
	Progression *float64
}

// LocatorType implements Locator.
func (LegacyCFI) LocatorType() string { return TypeLegacyCFI }

// WireForm implements Element.
func (l LegacyCFI) WireForm() (map[string]any, error) {
	return map[string]any{
		"@type":                 TypeLegacyCFI,
		"idref":                 optional(l.IDRef),
		"contentCFI":            optional(l.CFI),
		"progressWithinChapter": optional(l.Progression),
	}, nil
}

// HrefProgression locates a position as a resource href plus the
// progression (0..1) within that resource.
type HrefProgression struct {
	Href        string
	Progression float64
}

// LocatorType implements Locator.
func (HrefProgression) LocatorType() string { return TypeHrefProgression }

// WireForm implements Element.
func (l HrefProgression) WireForm() (map[string]any, error) {
	return map[string]any{
		"@type":                 TypeHrefProgression,
		"idref":                 l.Href,
		"progressWithinChapter": l.Progression,
	}, nil
}

// Page locates a page number.
type Page struct {
	Page int
}

// LocatorType implements Locator.
func (Page) LocatorType() string { return TypePage }

// WireForm implements Element.
func (l Page) WireForm() (map[string]any, error) {
	return map[string]any{
		"@type": TypePage,
		"page":  l.Page,
	}, nil
}

// AudioBookTime locates a time offset within an audiobook chapter.
type AudioBookTime struct {
	Part       int
	Chapter    int
	Title      string
	DurationMs int64
	TimeMs     float64
	ID         string
}

// LocatorType implements Locator.
func (AudioBookTime) LocatorType() string { return TypeAudioBookTime }

// WireForm implements Element.
func (l AudioBookTime) WireForm() (map[string]any, error) {
	return map[string]any{
		"@type":       TypeAudioBookTime,
		"part":        l.Part,
		"chapter":     l.Chapter,
		"title":       l.Title,
		"audiobookID": l.ID,
		"duration":    l.DurationMs,
		"time":        l.TimeMs,
	}, nil
}

// optional converts a nil pointer to an untyped nil so it encodes as null.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
