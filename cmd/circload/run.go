package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/circload/internal/config"
	"github.com/nao1215/circload/internal/database"
	circlog "github.com/nao1215/circload/internal/log"
	"github.com/nao1215/circload/internal/model"
	"github.com/nao1215/circload/internal/pipeline"
	"github.com/nao1215/circload/internal/report"
	"github.com/nao1215/circload/internal/session"
	"github.com/nao1215/circload/internal/words"
)

// errScenarioFailures is returned when the run finished but at least one
// scenario execution failed, so scripts can detect it from the exit code.
var errScenarioFailures = errors.New("one or more scenario executions failed")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run virtual users against a circulation manager",
		Long: `Run starts virtual users that execute the selected scenarios against the
circulation manager described in the settings file.

Scenarios:
  login     Fetch the authentication document and log in
  feeds     Walk the catalog at random, following lanes and related feeds
  search    Search for a random term and page through the results
  bookmark  Borrow a book, write 99 bookmarks, and return the loan
  registry  Fetch every library authentication document from the registry

Each virtual user runs every selected scenario once, in the given order.
Scenarios after "login" reuse its session.

Examples:
  # Borrow and bookmark with 20 users, 5 at a time
  circload run -c circload.yaml -n 20 -C 5

  # Walk the catalog and search, writing a Markdown report
  circload run -s feeds -s search --markdown -o report.md

  # Settings file location from the environment
  CIRCULATION_LOAD_CONFIGURATION_FILE=circload.yaml circload run -s login`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Settings file path (default: $"+config.EnvSettingsFile+")")
	cmd.Flags().StringSliceP("scenario", "s", []string{config.ScenarioBookmark},
		"Scenario to run; repeat or separate with commas for several")

	// Load shape flags
	cmd.Flags().IntP("sessions", "n", config.DefaultSessions,
		"Number of virtual users")
	cmd.Flags().IntP("concurrency", "C", config.DefaultConcurrency,
		"Number of virtual users running at once")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Int("visits", config.DefaultMaxVisits,
		"Maximum number of feeds visited by the feeds scenario")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Storage flags
	cmd.Flags().Bool("no-db", false,
		"Do not store samples in the local database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the sample database")

	cmd.Flags().Bool("log-json", false, "Write logs as JSON")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runLoad(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a credential-masking logger on stderr.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if asJSON, err := cmd.Flags().GetBool("log-json"); err == nil && asJSON {
		return circlog.NewSecureJSONLogger(os.Stderr, verbose)
	}
	return circlog.NewSecureLogger(os.Stderr, verbose)
}

// buildConfig creates a Config from cobra command flags and loads the
// settings file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.SettingsPath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Scenarios, err = cmd.Flags().GetStringSlice("scenario"); err != nil {
		return nil, err
	}
	if cfg.Sessions, err = cmd.Flags().GetInt("sessions"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxVisits, err = cmd.Flags().GetInt("visits"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	path, err := config.ResolveSettingsPath(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	if cfg.Settings, err = config.LoadSettings(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runLoad executes the load run and writes its report to stdout or the
// configured report file.
func runLoad(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	corpus, err := words.Default()
	if err != nil {
		return fmt.Errorf("failed to load search terms: %w", err)
	}

	// Fail before any user starts when a scenario name is wrong.
	if _, err := pipeline.NewSteps(cfg.Scenarios, cfg.MaxVisits, logger); err != nil {
		return err
	}

	var db *database.SampleDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	runnerOpts := []pipeline.RunnerOption{
		pipeline.WithRunnerLogger(logger),
		pipeline.WithConcurrency(cfg.Concurrency),
	}
	if db != nil {
		runnerOpts = append(runnerOpts, pipeline.WithRecorder(db))
	}

	runner := pipeline.NewRunner(
		func() *pipeline.Pipeline {
			return createPipeline(cfg, logger)
		},
		newUserFactory(cfg, corpus, logger),
		runnerOpts...,
	)

	fmt.Fprintf(os.Stderr, "Starting run %s: %d session(s), concurrency %d, scenarios %v\n",
		runner.RunID(), cfg.Sessions, cfg.Concurrency, cfg.Scenarios)

	summary, runErr := runner.Run(ctx, cfg.Sessions)

	if db != nil {
		// The summary of an interrupted run is still worth keeping.
		if err := db.SaveRun(context.WithoutCancel(ctx), summary); err != nil {
			logger.Error("failed to save run", "run", summary.RunID, "error", err)
		}
	}

	if err := outputReport(cfg, summary, stdout); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to write report: %w", err))
	}
	if runErr != nil {
		return runErr
	}
	if summary.Failed() {
		return fmt.Errorf("%w: %d of %d", errScenarioFailures, summary.Failures, summary.Total)
	}
	return nil
}

// createPipeline builds the pipeline run by one virtual user.
func createPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	// Scenario names were checked before the run started.
	steps, err := pipeline.NewSteps(cfg.Scenarios, cfg.MaxVisits, logger)
	if err != nil {
		logger.Error("failed to create steps", "error", err)
		return p
	}
	p.AddSteps(steps...)
	return p
}

// newUserFactory returns a factory creating virtual users with their own
// session and cookie jar.
func newUserFactory(cfg *config.Config, corpus *words.Corpus, logger *slog.Logger) pipeline.UserFactory {
	return func(_ context.Context, runID string, index int) (*pipeline.VirtualUser, error) {
		s, err := session.New(
			session.WithID(runID[:min(8, len(runID))]+"-"+strconv.Itoa(index)),
			session.WithBaseURL(cfg.Settings.CirculationManager.Host),
			session.WithTimeout(cfg.Timeout),
			session.WithUserAgent(cfg.UserAgent),
			session.WithMaxBodySize(cfg.MaxBodySize),
			session.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return &pipeline.VirtualUser{
			RunID:    runID,
			Session:  s,
			Settings: cfg.Settings,
			Terms:    corpus,
		}, nil
	}
}

// outputReport writes the summary in the requested format.
func outputReport(cfg *config.Config, summary *model.Summary, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose, output).Write(summary)
	return err
}

// newReportWriter selects the report format. Text is the default.
func newReportWriter(jsonReport, markdownReport, verbose bool, output io.Writer) report.Writer {
	switch {
	case jsonReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case markdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(verbose))
	}
}
