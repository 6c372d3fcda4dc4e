package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrEmptyDBPath is returned when no database path is configured.
	ErrEmptyDBPath = errors.New("database path cannot be empty")

	// ErrInvalidGradeSystem is returned when a display system does not
	// match its climb type.
	ErrInvalidGradeSystem = errors.New("invalid grade system: boulder must be vscale or font, route must be yds or french")

	// ErrInvalidRefreshRate is returned when refresh rate is <= 0.
	ErrInvalidRefreshRate = errors.New("invalid refresh rate: must be > 0")

	// ErrInvalidRemoteTimeout is returned when the remote timeout is negative.
	ErrInvalidRemoteTimeout = errors.New("invalid remote timeout: must be >= 0")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
