package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/circload/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: plain text with ASCII rules works in every terminal and
// survives being piped to a file.
type SimpleWriter struct {
	baseWriter

	// verbose lists every distinct error instead of the first few.
	verbose bool
}

// maxErrors is the number of distinct errors shown without verbose output.
const maxErrors = 5

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeScenarios(&sb, summary)
	w.writeErrors(&sb, summary)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CIRCLOAD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:      %s\n", summary.RunID)
	fmt.Fprintf(sb, "Started:     %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Elapsed:     %s\n", formatDuration(summary.Elapsed))
	fmt.Fprintf(sb, "Sessions:    %d\n", summary.Sessions)
	fmt.Fprintf(sb, "Executions:  %d (%d failed)\n", summary.Total, summary.Failures)
	fmt.Fprintf(sb, "Throughput:  %.2f/s\n", summary.Throughput())
	fmt.Fprintf(sb, "Status:      %s\n", statusText(summary))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeScenarios(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("SCENARIOS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if len(summary.Scenarios) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}

	fmt.Fprintf(sb, "  %-10s %6s %6s %10s %10s %10s %10s\n", "NAME", "COUNT", "FAIL", "MIN", "P50", "P95", "MAX")
	for _, s := range summary.Scenarios {
		fmt.Fprintf(sb, "  %-10s %6d %6d %10s %10s %10s %10s\n",
			s.Scenario, s.Count, s.Failures,
			formatDuration(s.Min), formatDuration(s.P50), formatDuration(s.P95), formatDuration(s.Max))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeErrors(sb *strings.Builder, summary *model.Summary) {
	if len(summary.Errors) == 0 {
		return
	}

	sb.WriteString("ERRORS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	errs := summary.Errors
	if !w.verbose && len(errs) > maxErrors {
		errs = errs[:maxErrors]
	}
	for _, e := range errs {
		fmt.Fprintf(sb, "  [%s] x%d %s\n", e.Scenario, e.Count, truncateString(e.Message, 80))
	}
	if hidden := len(summary.Errors) - len(errs); hidden > 0 {
		fmt.Fprintf(sb, "  ... %d more (use --verbose to list all)\n", hidden)
	}
	sb.WriteString("\n")
}
