package bookmark

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestLocatorWireForm tests the exact wire form of each locator variant.
func TestLocatorWireForm(t *testing.T) {
	t.Parallel()

	idref := "chapter-1"
	cfi := "/4/2[chap01]!/4/2/1:0"
	progression := 0.25

	tests := []struct {
		name    string
		locator Locator
		want    string
	}{
		{
			name:    "page",
			locator: Page{Page: 5},
			want:    `{"@type":"LocatorPage","page":5}`,
		},
		{
			name:    "href progression",
			locator: HrefProgression{Href: "x", Progression: 0.5},
			want:    `{"@type":"LocatorHrefProgression","idref":"x","progressWithinChapter":0.5}`,
		},
		{
			name:    "legacy cfi with values",
			locator: LegacyCFI{IDRef: &idref, CFI: &cfi, Progression: &progression},
			want:    `{"@type":"LocatorLegacyCFI","contentCFI":"/4/2[chap01]!/4/2/1:0","idref":"chapter-1","progressWithinChapter":0.25}`,
		},
		{
			name:    "legacy cfi unset fields are null",
			locator: LegacyCFI{},
			want:    `{"@type":"LocatorLegacyCFI","contentCFI":null,"idref":null,"progressWithinChapter":null}`,
		},
		{
			name: "audiobook time",
			locator: AudioBookTime{
				Part:       1,
				Chapter:    3,
				Title:      "Chapter Three",
				DurationMs: 60000,
				TimeMs:     1500,
				ID:         "urn:audio:1",
			},
			want: `{"@type":"LocatorAudioBookTime","audiobookID":"urn:audio:1","chapter":3,"duration":60000,"part":1,"time":1500,"title":"Chapter Three"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Marshal(tt.locator)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertJSONEqual(t, tt.want, string(got))
		})
	}
}

// TestPageLocatorLiteral checks the page locator byte-for-byte, since the
// serialized locator is embedded as a string in bookmarks.
func TestPageLocatorLiteral(t *testing.T) {
	t.Parallel()

	got, err := Marshal(Page{Page: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"@type":"LocatorPage","page":5}` {
		t.Errorf("unexpected wire form %s", got)
	}
}

// TestLocatorType tests the discriminators.
func TestLocatorType(t *testing.T) {
	t.Parallel()

	locators := map[string]Locator{
		TypeLegacyCFI:       LegacyCFI{},
		TypeHrefProgression: HrefProgression{},
		TypePage:            Page{},
		TypeAudioBookTime:   AudioBookTime{},
	}
	for want, l := range locators {
		if l.LocatorType() != want {
			t.Errorf("expected %q, got %q", want, l.LocatorType())
		}
	}
}

// TestBookmarkWireForm tests the annotation envelope.
func TestBookmarkWireForm(t *testing.T) {
	t.Parallel()

	t.Run("serializes the JSON-LD envelope", func(t *testing.T) {
		t.Parallel()

		b := Bookmark{
			ID: "5b0f7c3e-1c9a-4d7e-9a57-5a1f0b6f2d11",
			Target: Target{
				Locator: Page{Page: 42},
				Source:  "urn:isbn:1",
			},
			Motivation: Bookmarking,
			Body: Body{
				DeviceID: "device-1",
				Time:     "2024-01-02T03:04:05+0000",
			},
		}

		data, err := Marshal(b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if got["@context"] != AnnotationContext {
			t.Errorf("unexpected @context %v", got["@context"])
		}
		if got["type"] != "Annotation" {
			t.Errorf("unexpected type %v", got["type"])
		}
		if got["id"] != b.ID {
			t.Errorf("unexpected id %v", got["id"])
		}
		if got["motivation"] != "http://www.w3.org/ns/oa#bookmarking" {
			t.Errorf("unexpected motivation %v", got["motivation"])
		}

		body, ok := got["body"].(map[string]any)
		if !ok {
			t.Fatalf("body is not an object: %v", got["body"])
		}
		if body["http://librarysimplified.org/terms/time"] != "2024-01-02T03:04:05+0000" {
			t.Errorf("unexpected time %v", body)
		}
		if body["http://librarysimplified.org/terms/device"] != "device-1" {
			t.Errorf("unexpected device %v", body)
		}

		target, ok := got["target"].(map[string]any)
		if !ok {
			t.Fatalf("target is not an object: %v", got["target"])
		}
		if target["source"] != "urn:isbn:1" {
			t.Errorf("unexpected source %v", target["source"])
		}
		selector, ok := target["selector"].(map[string]any)
		if !ok {
			t.Fatalf("selector is not an object: %v", target["selector"])
		}
		if selector["type"] != "oa:FragmentSelector" {
			t.Errorf("unexpected selector type %v", selector["type"])
		}
		if selector["value"] != `{"@type":"LocatorPage","page":42}` {
			t.Errorf("unexpected selector value %v", selector["value"])
		}
	})

	t.Run("idling motivation still writes the bookmarking term", func(t *testing.T) {
		t.Parallel()

		b := Bookmark{ID: "x", Target: Target{Locator: Page{Page: 1}}, Motivation: Idling}
		form, err := b.WireForm()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if form["motivation"] != MotivationURI {
			t.Errorf("unexpected motivation %v", form["motivation"])
		}
	})

	t.Run("missing locator is an error", func(t *testing.T) {
		t.Parallel()

		_, err := Marshal(Bookmark{ID: "x"})
		if !errors.Is(err, ErrNoLocator) {
			t.Errorf("expected ErrNoLocator, got %v", err)
		}
	})
}

// TestMotivationString tests the vocabulary terms.
func TestMotivationString(t *testing.T) {
	t.Parallel()

	if Bookmarking.String() != MotivationURI {
		t.Errorf("unexpected bookmarking term %q", Bookmarking.String())
	}
	if Idling.String() != IdlingURI {
		t.Errorf("unexpected idling term %q", Idling.String())
	}
	if Motivation(0).String() != "unknown" {
		t.Errorf("unexpected zero term %q", Motivation(0).String())
	}
}

func assertJSONEqual(t *testing.T, want, got string) {
	t.Helper()

	var w, g any
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("invalid expected JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("invalid JSON %s: %v", got, err)
	}
	wb, _ := json.Marshal(w)
	gb, _ := json.Marshal(g)
	if string(wb) != string(gb) {
		t.Errorf("JSON mismatch\nwant: %s\ngot:  %s", want, got)
	}
}
