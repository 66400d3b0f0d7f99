// Package config provides configuration for circload.
//
// Two kinds of configuration live here:
//   - Config holds runtime options populated from CLI flags (timeouts,
//     session counts, scenarios, report format, database location)
//   - Settings describes the systems under test (circulation manager host,
//     patron credentials, registry host) and is loaded from a YAML file
//
// Design decision: Settings are validated once at load time. Scenarios can
// then rely on invariants such as "exactly one primary user" without checking
// again on every virtual-user iteration.
package config
