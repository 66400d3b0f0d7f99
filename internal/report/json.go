package report

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/nao1215/circload/internal/model"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONWriter outputs reports in JSON format.
// Durations are written in nanoseconds, as time.Duration marshals.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// version is the circload version recorded in the report.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithVersion records the circload version in the report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps a summary with output metadata.
type JSONReport struct {
	// Version is the circload version that produced the run.
	Version string `json:"version,omitempty"`

	// Throughput is scenario executions per second.
	Throughput float64 `json:"throughput"`

	// Summary is the run summary.
	Summary *model.Summary `json:"summary"`
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	report := JSONReport{
		Version:    w.version,
		Throughput: summary.Throughput(),
		Summary:    summary,
	}

	var data []byte
	var err error
	if w.indent {
		data, err = jsonAPI.MarshalIndent(report, "", "  ")
	} else {
		data, err = jsonAPI.Marshal(report)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}
