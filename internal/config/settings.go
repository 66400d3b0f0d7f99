package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CMUser is a patron account on the circulation manager.
type CMUser struct {
	Name     string
	Password string

	// Primary marks the account used for authenticated scenarios.
	Primary bool
}

// CMConfiguration describes the circulation manager under test.
type CMConfiguration struct {
	// Host is the root URL of the circulation manager.
	Host string

	// Users maps account names to accounts. Exactly one user is primary.
	Users map[string]CMUser

	// LibraryIdentifiers optionally names the libraries hosted by the server.
	LibraryIdentifiers []string
}

// PrimaryUser returns the primary account.
func (c CMConfiguration) PrimaryUser() (CMUser, error) {
	for _, name := range c.userNames() {
		if u := c.Users[name]; u.Primary {
			return u, nil
		}
	}
	return CMUser{}, ErrNoPrimaryUser
}

func (c CMConfiguration) userNames() []string {
	names := make([]string, 0, len(c.Users))
	for name := range c.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryConfiguration describes the library registry under test.
type RegistryConfiguration struct {
	Host string
}

// Settings is the parsed settings file.
type Settings struct {
	CirculationManager CMConfiguration
	Registry           RegistryConfiguration
}

// primaryFlag accepts true/false as a YAML bool or as a case-insensitive string.
type primaryFlag bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *primaryFlag) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w (line %d)", ErrInvalidPrimary, value.Line)
	}
	switch strings.ToUpper(strings.TrimSpace(value.Value)) {
	case "TRUE":
		*p = true
	case "FALSE":
		*p = false
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidPrimary, value.Value)
	}
	return nil
}

type rawUser struct {
	Password *string     `yaml:"password"`
	Primary  primaryFlag `yaml:"primary"`
}

type rawCirculationManager struct {
	Host               string             `yaml:"host"`
	Users              map[string]rawUser `yaml:"users"`
	LibraryIdentifiers []string           `yaml:"library_identifiers"`
}

type rawRegistry struct {
	Host string `yaml:"host"`
}

type rawSettings struct {
	CirculationManager *rawCirculationManager `yaml:"circulation_manager"`
	Registry           rawRegistry            `yaml:"registry"`
}

// ParseSettings decodes and validates a settings document.
// The document is YAML; JSON documents are accepted as well.
func ParseSettings(data []byte) (*Settings, error) {
	var raw rawSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse settings: %w", ErrConfiguration, err)
	}

	if raw.CirculationManager == nil {
		return nil, ErrMissingCirculationManager
	}
	cm := raw.CirculationManager
	if strings.TrimSpace(cm.Host) == "" {
		return nil, ErrMissingHost
	}
	if len(cm.Users) == 0 {
		return nil, ErrNoUsers
	}

	users := make(map[string]CMUser, len(cm.Users))
	primaries := 0
	for name, u := range cm.Users {
		if u.Password == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingPassword, name)
		}
		if u.Primary {
			primaries++
		}
		users[name] = CMUser{
			Name:     name,
			Password: *u.Password,
			Primary:  bool(u.Primary),
		}
	}
	switch {
	case primaries == 0:
		return nil, ErrNoPrimaryUser
	case primaries > 1:
		return nil, ErrMultiplePrimaryUsers
	}

	return &Settings{
		CirculationManager: CMConfiguration{
			Host:               strings.TrimSpace(cm.Host),
			Users:              users,
			LibraryIdentifiers: cm.LibraryIdentifiers,
		},
		Registry: RegistryConfiguration{
			Host: strings.TrimSpace(raw.Registry.Host),
		},
	}, nil
}
