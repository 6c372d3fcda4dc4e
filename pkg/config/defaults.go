package config

import (
	"os"
	"path/filepath"
)

// defaultDBPath returns the default database file path.
//
// Returns: ~/.config/cragtrack/cragtrack.db.
func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./cragtrack.db"
	}

	return filepath.Join(homeDir, ".config", "cragtrack", "cragtrack.db")
}

// defaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/cragtrack/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(homeDir, ".config", "cragtrack", "config.yaml")
}

// DefaultConfigPath exposes the default config file location for commands
// that create or watch the file.
func DefaultConfigPath() string {
	return defaultConfigPath()
}
