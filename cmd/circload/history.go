package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/circload/internal/config"
	"github.com/nao1215/circload/internal/database"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show stored load runs",
		Long: `History lists recent runs from the sample database, newest first.

With a run id, the stored report of that run is printed in the selected
format instead.

Examples:
  # List the last 20 runs
  circload history

  # Show one run as Markdown
  circload history 3f6c2a1e-... --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the sample database")
	cmd.Flags().BoolP("json", "j", false, "Show the run as JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Show the run as Markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run \"circload run\" first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		summary, err := db.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = newReportWriter(jsonOutput, markdownOutput, getVerboseFlag(cmd), out).Write(summary)
		return err
	}
	return listRuns(ctx, db, limit, out)
}

// listRuns prints stored runs as a table.
func listRuns(ctx context.Context, db *database.SampleDB, limit int, out io.Writer) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tELAPSED\tSESSIONS\tEXECUTIONS\tFAILURES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Elapsed.Round(time.Millisecond),
			r.Sessions,
			r.Total,
			r.Failures,
		)
	}
	return tw.Flush()
}
