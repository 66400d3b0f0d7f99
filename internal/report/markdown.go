package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/circload/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeScenarios(md, summary)
	w.writeErrors(md, summary)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [circload](https://github.com/nao1215/circload)*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("circload Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.RunID + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", formatDuration(summary.Elapsed)},
			{"Sessions", strconv.Itoa(summary.Sessions)},
			{"Executions", strconv.Itoa(summary.Total)},
			{"Failures", strconv.Itoa(summary.Failures)},
			{"Throughput", fmt.Sprintf("%.2f/s", summary.Throughput())},
		},
	})
	md.PlainText("")

	switch {
	case summary.Total == 0:
		md.Note("No scenarios were executed.")
	case summary.Failures == summary.Total:
		md.Cautionf("Every scenario execution failed (%d of %d).", summary.Failures, summary.Total)
	case summary.Failed():
		md.Warningf("%d of %d scenario executions failed.", summary.Failures, summary.Total)
	default:
		md.Tip("Every scenario execution succeeded.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeScenarios(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Scenarios")
	md.PlainText("")

	if len(summary.Scenarios) == 0 {
		md.PlainText("No scenarios executed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Scenarios))
	for i, s := range summary.Scenarios {
		rows[i] = []string{
			s.Scenario,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.Failures),
			fmt.Sprintf("%.1f%%", s.FailureRate()*100),
			formatDuration(s.Min),
			formatDuration(s.Mean),
			formatDuration(s.P50),
			formatDuration(s.P95),
			formatDuration(s.Max),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Scenario", "Count", "Failures", "Failure Rate", "Min", "Mean", "P50", "P95", "Max"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.Total > 0 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of successes and failures.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Outcome"),
		piechart.WithShowData(true),
	)
	if ok := summary.Total - summary.Failures; ok > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(ok))
	}
	if summary.Failures > 0 {
		chart.LabelAndIntValue("Failed", uint64(summary.Failures))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, summary *model.Summary) {
	if len(summary.Errors) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")

	rows := make([][]string, len(summary.Errors))
	for i, e := range summary.Errors {
		rows[i] = []string{e.Scenario, strconv.Itoa(e.Count), truncateString(e.Message, 100)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Scenario", "Count", "Message"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, e := range summary.Errors {
		if len(e.Message) > 100 {
			md.Details(e.Scenario, e.Message)
		}
	}
}
