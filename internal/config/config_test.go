package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 60 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 60*time.Second {
			t.Errorf("expected Timeout to be 60s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Sessions is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.Sessions != 1 {
			t.Errorf("expected Sessions to be 1, got %d", cfg.Sessions)
		}
	})

	t.Run("default scenario is bookmark", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Scenarios) != 1 || cfg.Scenarios[0] != ScenarioBookmark {
			t.Errorf("expected [bookmark], got %v", cfg.Scenarios)
		}
	})

	t.Run("default MaxVisits is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxVisits != 10 {
			t.Errorf("expected MaxVisits to be 10, got %d", cfg.MaxVisits)
		}
	})

	t.Run("samples are saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir to be %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config returns nil",
			modify: func(*Config) {},
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero sessions",
			modify:  func(c *Config) { c.Sessions = 0 },
			wantErr: ErrInvalidSessions,
		},
		{
			name:    "negative concurrency",
			modify:  func(c *Config) { c.Concurrency = -1 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "zero visits",
			modify:  func(c *Config) { c.MaxVisits = 0 },
			wantErr: ErrInvalidMaxVisits,
		},
		{
			name:    "no scenario",
			modify:  func(c *Config) { c.Scenarios = nil },
			wantErr: ErrNoScenario,
		},
		{
			name:    "unknown scenario",
			modify:  func(c *Config) { c.Scenarios = []string{ScenarioLogin, "checkout"} },
			wantErr: ErrUnknownScenario,
		},
		{
			name: "conflicting report formats",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative max body size",
			modify:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name: "registry scenario without registry host",
			modify: func(c *Config) {
				c.Scenarios = []string{ScenarioRegistry}
				c.Settings = &Settings{}
			},
			wantErr: ErrMissingRegistry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestParseSettings tests decoding and validation of settings documents.
func TestParseSettings(t *testing.T) {
	t.Parallel()

	t.Run("valid YAML", func(t *testing.T) {
		t.Parallel()

		doc := `
circulation_manager:
  host: https://cm.example.com/
  users:
    alice:
      password: secret
      primary: "TRUE"
    bob:
      password: hunter2
  library_identifiers: [lib-1, lib-2]
registry:
  host: https://registry.example.com/
`
		s, err := ParseSettings([]byte(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.CirculationManager.Host != "https://cm.example.com/" {
			t.Errorf("unexpected host %q", s.CirculationManager.Host)
		}
		if len(s.CirculationManager.Users) != 2 {
			t.Errorf("expected 2 users, got %d", len(s.CirculationManager.Users))
		}
		if s.Registry.Host != "https://registry.example.com/" {
			t.Errorf("unexpected registry host %q", s.Registry.Host)
		}
		if len(s.CirculationManager.LibraryIdentifiers) != 2 {
			t.Errorf("unexpected library identifiers %v", s.CirculationManager.LibraryIdentifiers)
		}

		primary, err := s.CirculationManager.PrimaryUser()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if primary.Name != "alice" || primary.Password != "secret" {
			t.Errorf("unexpected primary user %+v", primary)
		}
		if s.CirculationManager.Users["bob"].Primary {
			t.Error("bob must not be primary")
		}
	})

	t.Run("JSON documents are accepted", func(t *testing.T) {
		t.Parallel()

		doc := `{"circulation_manager": {"host": "https://cm.example.com/",
			"users": {"alice": {"password": "secret", "primary": "true"}}}}`
		s, err := ParseSettings([]byte(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.CirculationManager.PrimaryUser(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("boolean primary flag", func(t *testing.T) {
		t.Parallel()

		doc := `
circulation_manager:
  host: https://cm.example.com/
  users:
    alice: { password: secret, primary: true }
    bob: { password: x, primary: False }
`
		s, err := ParseSettings([]byte(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.CirculationManager.Users["alice"].Primary {
			t.Error("alice should be primary")
		}
	})

	errorCases := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "missing circulation manager",
			doc:     "registry:\n  host: x\n",
			wantErr: ErrMissingCirculationManager,
		},
		{
			name:    "missing host",
			doc:     "circulation_manager:\n  users:\n    a: {password: p, primary: 'true'}\n",
			wantErr: ErrMissingHost,
		},
		{
			name:    "no users",
			doc:     "circulation_manager:\n  host: h\n",
			wantErr: ErrNoUsers,
		},
		{
			name:    "missing password",
			doc:     "circulation_manager:\n  host: h\n  users:\n    a: {primary: 'true'}\n",
			wantErr: ErrMissingPassword,
		},
		{
			name:    "invalid primary value",
			doc:     "circulation_manager:\n  host: h\n  users:\n    a: {password: p, primary: 'maybe'}\n",
			wantErr: ErrInvalidPrimary,
		},
		{
			name:    "no primary user",
			doc:     "circulation_manager:\n  host: h\n  users:\n    a: {password: p}\n    b: {password: q, primary: 'false'}\n",
			wantErr: ErrNoPrimaryUser,
		},
		{
			name:    "two primary users",
			doc:     "circulation_manager:\n  host: h\n  users:\n    a: {password: p, primary: 'true'}\n    b: {password: q, primary: 'TRUE'}\n",
			wantErr: ErrMultiplePrimaryUsers,
		},
		{
			name:    "malformed YAML",
			doc:     "circulation_manager: [",
			wantErr: ErrConfiguration,
		},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSettings([]byte(tt.doc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected a configuration error, got %v", err)
			}
		})
	}
}

// TestPrimaryUserWithoutPrimary tests PrimaryUser on a hand-built configuration.
func TestPrimaryUserWithoutPrimary(t *testing.T) {
	t.Parallel()

	cm := CMConfiguration{Users: map[string]CMUser{"a": {Name: "a"}}}
	if _, err := cm.PrimaryUser(); !errors.Is(err, ErrNoPrimaryUser) {
		t.Errorf("expected ErrNoPrimaryUser, got %v", err)
	}
}

// TestLoadSettings tests loading a settings file from disk.
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	t.Run("reads a valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "circload.yaml")
		doc := "circulation_manager:\n  host: https://cm.example.com/\n  users:\n    alice: {password: secret, primary: 'true'}\n"
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatalf("failed to write settings: %v", err)
		}

		s, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.CirculationManager.Host != "https://cm.example.com/" {
			t.Errorf("unexpected host %q", s.CirculationManager.Host)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrSettingsNotFound) {
			t.Errorf("expected ErrSettingsNotFound, got %v", err)
		}
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("expected a configuration error, got %v", err)
		}
	})
}

// TestResolveSettingsPath tests the flag and environment lookup.
// Subtests modify the environment, so they do not run in parallel.
func TestResolveSettingsPath(t *testing.T) {
	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv(EnvSettingsFile, "/env/settings.yaml")

		got, err := ResolveSettingsPath("/flag/settings.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/flag/settings.yaml" {
			t.Errorf("expected flag path, got %q", got)
		}
	})

	t.Run("environment is used without flag", func(t *testing.T) {
		t.Setenv(EnvSettingsFile, "/env/settings.yaml")

		got, err := ResolveSettingsPath("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/env/settings.yaml" {
			t.Errorf("expected environment path, got %q", got)
		}
	})

	t.Run("neither is a configuration error", func(t *testing.T) {
		t.Setenv(EnvSettingsFile, "")

		_, err := ResolveSettingsPath("")
		if !errors.Is(err, ErrMissingEnvironment) {
			t.Errorf("expected ErrMissingEnvironment, got %v", err)
		}
		if !strings.Contains(err.Error(), EnvSettingsFile) {
			t.Errorf("error should name the variable: %v", err)
		}
	})
}

// TestXDGDirs tests that XDG directories end with the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for _, dir := range []string{XDGDataDir(), XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected %q to end with %q", dir, AppName)
		}
	}
}
