// Package config provides configuration management for cragtrack.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file
// 3. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("database: %s\n", cfg.Storage.DBPath)
package config

import (
	"time"

	"github.com/cragtrack/cragtrack/pkg/grade"
)

// Config represents the complete application configuration.
//
// Invariants:
// - Storage.DBPath must be non-empty
// - Display systems must match their climb types
// - Display.RefreshRate must be > 0
// - Remote.Timeout must be >= 0
// - Logging level and format must be recognized values.
type Config struct {
	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Remote backend settings
	Remote RemoteConfig `yaml:"remote"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to BoltDB database file
	DBPath string `yaml:"db_path"`
}

// RemoteConfig contains remote backend settings. Leaving BaseURL empty runs
// cragtrack fully offline.
type RemoteConfig struct {
	// Backend root URL
	BaseURL string `yaml:"base_url"`

	// API key for bearer authentication
	APIKey string `yaml:"api_key"`

	// User identifier the collections are scoped to
	UserID string `yaml:"user_id"`

	// Per-request timeout
	Timeout time.Duration `yaml:"timeout"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Vocabulary boulder grades are displayed in (vscale, font)
	BoulderSystem string `yaml:"boulder_system"`

	// Vocabulary route grades are displayed in (yds, french)
	RouteSystem string `yaml:"route_system"`

	// Live view refresh rate
	RefreshRate time.Duration `yaml:"refresh_rate"`
}

// GradeSettings converts the display section into grade settings.
func (d DisplayConfig) GradeSettings() grade.Settings {
	return grade.Settings{
		BoulderSystem: grade.System(d.BoulderSystem),
		RouteSystem:   grade.System(d.RouteSystem),
	}
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return ErrEmptyDBPath
	}

	if !c.Display.GradeSettings().Valid() {
		return ErrInvalidGradeSystem
	}
	if c.Display.RefreshRate <= 0 {
		return ErrInvalidRefreshRate
	}

	if c.Remote.Timeout < 0 {
		return ErrInvalidRemoteTimeout
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
		},
		Display: DisplayConfig{
			BoulderSystem: string(grade.SystemVScale),
			RouteSystem:   string(grade.SystemYDS),
			RefreshRate:   1 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}
