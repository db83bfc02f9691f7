// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for ticketclock.
//
// Configuration is loaded from a single file specified by either the
// TICKETCLOCK_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no automatic file search: a binary
// that finds neither runs on [Default].
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production without an explicit section
// switches logging to JSON.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with Countdown, Notifications, Display,
//     Logging, Events
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other ticketclock packages.
package config
