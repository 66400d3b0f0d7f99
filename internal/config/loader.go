package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// EnvSettingsFile names the environment variable holding the settings file path.
const EnvSettingsFile = "CIRCULATION_LOAD_CONFIGURATION_FILE"

// DefaultSettingsFile is the file name written by "circload init".
const DefaultSettingsFile = "circload.yaml"

// ResolveSettingsPath returns the settings file location.
// An explicit flag value takes precedence over the environment variable.
func ResolveSettingsPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(EnvSettingsFile); env != "" {
		return env, nil
	}
	return "", ErrMissingEnvironment
}

// LoadSettings reads and validates the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided settings path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return ParseSettings(data)
}
