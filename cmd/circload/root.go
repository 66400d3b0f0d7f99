package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for circload.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circload",
		Short: "Load generator for library circulation managers",
		Long: `circload drives simulated patrons against a library circulation manager.

Each virtual user logs in with the credentials from the settings file and
runs the selected scenarios: login, random catalog walks, searches, the
borrow/bookmark/return cycle, and library registry lookups.

Results are summarized per scenario and stored in a local SQLite database
so that runs can be compared with "circload history".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
