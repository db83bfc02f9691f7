// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable [Load] reads the config path from.
const EnvVar = "TICKETCLOCK_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for ticketclock.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	Countdown     CountdownConfig     `yaml:"countdown"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Display       DisplayConfig       `yaml:"display"`
	Logging       LoggingConfig       `yaml:"logging"`
	Events        EventsConfig        `yaml:"events"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Countdown     *CountdownConfig        `yaml:"countdown,omitempty"`
	Notifications *NotificationsOverrides `yaml:"notifications,omitempty"`
	Display       *DisplayConfig          `yaml:"display,omitempty"`
	Logging       *LoggingConfig          `yaml:"logging,omitempty"`
	Events        *EventsOverrides        `yaml:"events,omitempty"`
}

// NotificationsOverrides is [NotificationsConfig] with an optional
// Enabled, so a section that only adjusts durations leaves it alone.
type NotificationsOverrides struct {
	Enabled   *bool           `yaml:"enabled,omitempty"`
	Durations DurationsConfig `yaml:"durations"`
}

// EventsOverrides is [EventsConfig] with an optional IncludeTicks.
type EventsOverrides struct {
	Path         string `yaml:"path"`
	IncludeTicks *bool  `yaml:"include_ticks,omitempty"`
}

// CountdownConfig configures the countdown engine.
type CountdownConfig struct {
	// DefaultHold is the reservation hold used by --hold when no
	// duration is given. Default: 120s
	DefaultHold time.Duration `yaml:"default_hold"`

	// WarningMode is "exact" (a threshold fires only when a tick lands
	// on its second) or "catch_up" (thresholds skipped by a late tick
	// still fire). Default: exact
	WarningMode string `yaml:"warning_mode"`
}

// NotificationsConfig configures the toast notifications.
type NotificationsConfig struct {
	// Enabled controls the threshold and expiry toasts.
	// Default: true
	Enabled bool `yaml:"enabled"`

	Durations DurationsConfig `yaml:"durations"`
}

// DurationsConfig is how long a toast of each level stays visible.
// Zero keeps a toast until it is dismissed.
type DurationsConfig struct {
	Success time.Duration `yaml:"success"`
	Error   time.Duration `yaml:"error"`
	Info    time.Duration `yaml:"info"`
	Warning time.Duration `yaml:"warning"`
}

// DisplayConfig configures the terminal view.
type DisplayConfig struct {
	// Size is "sm", "md" or "lg". Default: md
	Size string `yaml:"size"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error. Default: info
	Level string `yaml:"level"`

	// Format is "auto" (text on a terminal, JSON otherwise), "text"
	// or "json". Default: auto
	Format string `yaml:"format"`
}

// EventsConfig configures the CBOR event log.
type EventsConfig struct {
	// Path is the event log file. Empty disables the log.
	Path string `yaml:"path"`

	// IncludeTicks also records the once-per-second tick events.
	IncludeTicks bool `yaml:"include_ticks"`
}

// Default returns the default configuration. Binaries started without
// a config file run on these values.
func Default() *Config {
	return &Config{
		Environment: Development,
		Countdown: CountdownConfig{
			DefaultHold: 120 * time.Second,
			WarningMode: "exact",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Durations: DurationsConfig{
				Success: 3 * time.Second,
				Error:   5 * time.Second,
				Info:    4 * time.Second,
				Warning: 4 * time.Second,
			},
		},
		Display: DisplayConfig{Size: "md"},
		Logging: LoggingConfig{Level: "info", Format: "auto"},
	}
}

// Load loads configuration from the TICKETCLOCK_CONFIG environment
// variable. It fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your ticketclock.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Values in the
// file are merged over [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: machine-readable logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Countdown != nil {
		if overrides.Countdown.DefaultHold != 0 {
			c.Countdown.DefaultHold = overrides.Countdown.DefaultHold
		}
		if overrides.Countdown.WarningMode != "" {
			c.Countdown.WarningMode = overrides.Countdown.WarningMode
		}
	}

	if overrides.Notifications != nil {
		if overrides.Notifications.Enabled != nil {
			c.Notifications.Enabled = *overrides.Notifications.Enabled
		}
		durations := overrides.Notifications.Durations
		if durations.Success != 0 {
			c.Notifications.Durations.Success = durations.Success
		}
		if durations.Error != 0 {
			c.Notifications.Durations.Error = durations.Error
		}
		if durations.Info != 0 {
			c.Notifications.Durations.Info = durations.Info
		}
		if durations.Warning != 0 {
			c.Notifications.Durations.Warning = durations.Warning
		}
	}

	if overrides.Display != nil && overrides.Display.Size != "" {
		c.Display.Size = overrides.Display.Size
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}

	if overrides.Events != nil {
		if overrides.Events.Path != "" {
			c.Events.Path = overrides.Events.Path
		}
		if overrides.Events.IncludeTicks != nil {
			c.Events.IncludeTicks = *overrides.Events.IncludeTicks
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Events.Path = expandVars(c.Events.Path, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Countdown.DefaultHold <= 0 {
		errs = append(errs, fmt.Errorf("countdown.default_hold must be positive, got %s", c.Countdown.DefaultHold))
	}
	warningModes := []string{"exact", "catch_up"}
	if !slices.Contains(warningModes, c.Countdown.WarningMode) {
		errs = append(errs, fmt.Errorf("countdown.warning_mode must be one of: %v", warningModes))
	}

	for _, entry := range []struct {
		name  string
		value time.Duration
	}{
		{"success", c.Notifications.Durations.Success},
		{"error", c.Notifications.Durations.Error},
		{"info", c.Notifications.Durations.Info},
		{"warning", c.Notifications.Durations.Warning},
	} {
		if entry.value < 0 {
			errs = append(errs, fmt.Errorf("notifications.durations.%s must not be negative", entry.name))
		}
	}

	sizes := []string{"sm", "md", "lg"}
	if !slices.Contains(sizes, c.Display.Size) {
		errs = append(errs, fmt.Errorf("display.size must be one of: %v", sizes))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", levels))
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}
