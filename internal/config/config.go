package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout. Catalog searches on a loaded
	// server can take several seconds, so this is generous.
	DefaultTimeout = 60 * time.Second

	// DefaultSessions is the number of virtual users started per run.
	DefaultSessions = 1

	// DefaultConcurrency is the number of virtual users running at once.
	DefaultConcurrency = 4

	// DefaultMaxVisits is the number of distinct feeds a random walk fetches.
	DefaultMaxVisits = 10

	// AppName is the application name used for XDG directory paths.
	AppName = "circload"

	// DefaultUserAgent identifies circload in HTTP requests so operators can
	// separate synthetic traffic in their logs.
	DefaultUserAgent = "circload/1.0 (+https://github.com/nao1215/circload)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// Large acquisition feeds stay well below this.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Scenario names accepted by --scenario.
const (
	ScenarioLogin    = "login"
	ScenarioFeeds    = "feeds"
	ScenarioSearch   = "search"
	ScenarioBookmark = "bookmark"
	ScenarioRegistry = "registry"
)

// Scenarios lists every known scenario name in execution order.
var Scenarios = []string{
	ScenarioLogin,
	ScenarioFeeds,
	ScenarioSearch,
	ScenarioBookmark,
	ScenarioRegistry,
}

// Config holds all runtime options for a load run.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
type Config struct {
	// Timeout is the timeout for each HTTP request.
	Timeout time.Duration

	// Sessions is the number of virtual users. Each one runs every selected
	// scenario once with its own cookie jar and credentials.
	Sessions int

	// Concurrency is the maximum number of virtual users running at once.
	Concurrency int

	// Scenarios is the list of scenario names each virtual user runs in order.
	Scenarios []string

	// MaxVisits is the number of distinct feeds fetched by the feeds scenario.
	MaxVisits int

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JSONReport enables JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string

	// DBDir is the directory of the SQLite sample database.
	// Defaults to XDG data directory (~/.local/share/circload on Linux).
	DBDir string

	// SaveToDB indicates whether samples are persisted.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64

	// SettingsPath is the path of the settings file given by --config.
	SettingsPath string

	// Settings describes the systems under test. It is loaded from
	// SettingsPath (or the environment) before the run starts.
	Settings *Settings
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Sessions:    DefaultSessions,
		Concurrency: DefaultConcurrency,
		Scenarios:   []string{ScenarioBookmark},
		MaxVisits:   DefaultMaxVisits,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for circload.
// On Linux: ~/.local/share/circload
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for circload.
// On Linux: ~/.config/circload
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HasScenario reports whether the named scenario is selected.
func (c *Config) HasScenario(name string) bool {
	return slices.Contains(c.Scenarios, name)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Sessions <= 0 {
		return ErrInvalidSessions
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxVisits <= 0 {
		return ErrInvalidMaxVisits
	}
	if len(c.Scenarios) == 0 {
		return ErrNoScenario
	}
	for _, name := range c.Scenarios {
		if !slices.Contains(Scenarios, name) {
			return fmt.Errorf("%w: %q", ErrUnknownScenario, name)
		}
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Settings != nil && c.HasScenario(ScenarioRegistry) && c.Settings.Registry.Host == "" {
		return ErrMissingRegistry
	}
	return nil
}
