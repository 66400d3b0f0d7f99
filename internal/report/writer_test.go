package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/circload/internal/model"
)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *model.Summary {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	samples := []model.Sample{
		model.NewSample("run-1", "vu-0", "login", start, 200*time.Millisecond, nil),
		model.NewSample("run-1", "vu-1", "login", start, 300*time.Millisecond, nil),
		model.NewSample("run-1", "vu-0", "bookmark", start, 4*time.Second, nil),
		model.NewSample("run-1", "vu-1", "bookmark", start, 2*time.Second, errors.New("bookmark write 50 failed: HTTP status 500")),
	}
	return model.Summarize("run-1", start, 10*time.Second, 2, samples)
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and scenarios", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"CIRCLOAD REPORT",
			"run-1",
			"Executions:  4 (1 failed)",
			"Throughput:  0.40/s",
			"Status:      Failures",
			"bookmark",
			"login",
			"[bookmark] x1 bookmark write 50 failed",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("limits errors without verbose", func(t *testing.T) {
		t.Parallel()

		var samples []model.Sample
		for i := range 8 {
			samples = append(samples, model.NewSample("r", "vu", "search", time.Now(), time.Second,
				errors.New(strings.Repeat("x", i+1))))
		}
		summary := model.Summarize("r", time.Now(), time.Second, 1, samples)

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "... 3 more") {
			t.Errorf("expected hidden error count, got:\n%s", buf.String())
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "more (use --verbose") {
			t.Error("expected every error in verbose output")
		}
	})

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(model.Summarize("r", time.Now(), 0, 0, nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "(none)") || !strings.Contains(buf.String(), "No scenarios executed") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# circload Report",
			"## Scenarios",
			"## Errors",
			"`run-1`",
			"pie",
			"Succeeded",
			"[!WARNING]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("successful run has no error section", func(t *testing.T) {
		t.Parallel()

		samples := []model.Sample{model.NewSample("r", "vu", "login", time.Now(), time.Second, nil)}
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.Summarize("r", time.Now(), time.Second, 1, samples)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "## Errors") {
			t.Error("expected no error section")
		}
		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Error("expected a tip for a passing run")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Version    string        `json:"version"`
			Throughput float64       `json:"throughput"`
			Summary    model.Summary `json:"summary"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version != "v1.2.3" || got.Throughput != 0.4 {
			t.Errorf("unexpected metadata %+v", got)
		}
		if got.Summary.Total != 4 || got.Summary.Failures != 1 || len(got.Summary.Scenarios) != 2 {
			t.Errorf("unexpected summary %+v", got.Summary)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected compact output on one line")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"summary\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
		if strings.Contains(buf.String(), "\"version\"") {
			t.Error("expected version to be omitted when unset")
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write(*model.Summary) (int, error) { return 0, errors.New("disk full") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		n, err := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b)).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf)).Write(createTestSummary())
		if err == nil {
			t.Fatal("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{1234567 * time.Microsecond, "1.235s"},
		{1234567 * time.Nanosecond, "1.23ms"},
		{500 * time.Nanosecond, "500ns"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
