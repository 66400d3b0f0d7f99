package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the runtime options.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidSessions is returned when the number of sessions is not positive.
	ErrInvalidSessions = errors.New("invalid sessions: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxVisits is returned when the feed walk visit limit is not positive.
	ErrInvalidMaxVisits = errors.New("invalid visits: must be positive")

	// ErrNoScenario is returned when no scenario is selected.
	ErrNoScenario = errors.New("no scenario specified")

	// ErrUnknownScenario is returned for a scenario name that does not exist.
	ErrUnknownScenario = errors.New("unknown scenario")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

// ErrConfiguration is the root of every error caused by the settings file
// or its location. Use errors.Is(err, ErrConfiguration) to detect them.
var ErrConfiguration = errors.New("configuration error")

// Settings errors. Each one matches ErrConfiguration with errors.Is.
var (
	// ErrMissingEnvironment is returned when neither the --config flag nor
	// the CIRCULATION_LOAD_CONFIGURATION_FILE environment variable is set.
	ErrMissingEnvironment = fmt.Errorf("%w: %s environment variable is undefined", ErrConfiguration, EnvSettingsFile)

	// ErrSettingsNotFound is returned when the settings file does not exist.
	ErrSettingsNotFound = fmt.Errorf("%w: settings file not found", ErrConfiguration)

	// ErrMissingCirculationManager is returned when the circulation_manager section is absent.
	ErrMissingCirculationManager = fmt.Errorf("%w: circulation_manager section is missing", ErrConfiguration)

	// ErrMissingHost is returned when the circulation manager host is empty.
	ErrMissingHost = fmt.Errorf("%w: circulation manager host is missing", ErrConfiguration)

	// ErrNoUsers is returned when no patron is configured.
	ErrNoUsers = fmt.Errorf("%w: no users defined", ErrConfiguration)

	// ErrMissingPassword is returned when a user has no password.
	ErrMissingPassword = fmt.Errorf("%w: user has no password", ErrConfiguration)

	// ErrInvalidPrimary is returned when a user's primary flag is neither true nor false.
	ErrInvalidPrimary = fmt.Errorf("%w: 'primary' must be 'true' or 'false'", ErrConfiguration)

	// ErrNoPrimaryUser is returned when no user is marked primary.
	ErrNoPrimaryUser = fmt.Errorf("%w: exactly one primary user must be defined", ErrConfiguration)

	// ErrMultiplePrimaryUsers is returned when more than one user is marked primary.
	ErrMultiplePrimaryUsers = fmt.Errorf("%w: multiple primary users defined", ErrConfiguration)

	// ErrMissingRegistry is returned when the registry scenario is selected
	// but no registry host is configured.
	ErrMissingRegistry = fmt.Errorf("%w: registry host is missing", ErrConfiguration)
)
