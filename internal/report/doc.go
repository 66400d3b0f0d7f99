// Package report writes run summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - MarkdownWriter: Markdown for sharing run results in issues or wikis
//   - JSONWriter: structured JSON for dashboards and scripts
//
// Design decision: report writing is kept apart from the summary data
// (in the model package) so that a new output format never touches the
// aggregation code.
package report
