package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/circload/internal/config"
)

//go:embed templates/circload.yaml
var settingsTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a circload settings file",
		Long: `Init writes a settings file template to the current directory.

The template describes the circulation manager under test, the patron
accounts used by virtual users, and the library registry.

Examples:
  # Create circload.yaml in current directory
  circload init

  # Create the settings file at a specific path
  circload init -o staging.yaml

  # Force overwrite existing file
  circload init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultSettingsFile,
		"Output file path for the settings")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing settings file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("settings file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := settingsTemplate.ReadFile("templates/circload.yaml")
	if err != nil {
		return fmt.Errorf("failed to read settings template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file holds patron passwords.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created settings file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to describe the system under test:")
	fmt.Fprintln(out, "  - Circulation manager host")
	fmt.Fprintln(out, "  - Patron accounts (exactly one primary)")
	fmt.Fprintln(out, "  - Library registry host")
	fmt.Fprintf(out, "\nThen run: circload run --config %s\n", outputPath)

	return nil
}
