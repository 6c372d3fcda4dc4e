package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
	if cfg.Display.BoulderSystem != "vscale" {
		t.Errorf("BoulderSystem = %q, want vscale", cfg.Display.BoulderSystem)
	}
	if cfg.Display.RouteSystem != "yds" {
		t.Errorf("RouteSystem = %q, want yds", cfg.Display.RouteSystem)
	}
	if cfg.Remote.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty (offline by default)", cfg.Remote.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.Storage.DBPath = "" },
			wantErr: ErrEmptyDBPath,
		},
		{
			name:    "boulder system on routes",
			mutate:  func(c *Config) { c.Display.RouteSystem = "vscale" },
			wantErr: ErrInvalidGradeSystem,
		},
		{
			name:    "unknown grade system",
			mutate:  func(c *Config) { c.Display.BoulderSystem = "uiaa" },
			wantErr: ErrInvalidGradeSystem,
		},
		{
			name:    "zero refresh rate",
			mutate:  func(c *Config) { c.Display.RefreshRate = 0 },
			wantErr: ErrInvalidRefreshRate,
		},
		{
			name:    "negative remote timeout",
			mutate:  func(c *Config) { c.Remote.Timeout = -time.Second },
			wantErr: ErrInvalidRemoteTimeout,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFileMergesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
storage:
  db_path: /tmp/cragtrack-test.db
display:
  boulder_system: font
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Storage.DBPath != "/tmp/cragtrack-test.db" {
		t.Errorf("DBPath = %q, want file value", cfg.Storage.DBPath)
	}
	if cfg.Display.BoulderSystem != "font" {
		t.Errorf("BoulderSystem = %q, want font", cfg.Display.BoulderSystem)
	}

	// Unset fields fall back to defaults.
	if cfg.Display.RouteSystem != "yds" {
		t.Errorf("RouteSystem = %q, want default yds", cfg.Display.RouteSystem)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
	if cfg.Display.RefreshRate != time.Second {
		t.Errorf("RefreshRate = %v, want default 1s", cfg.Display.RefreshRate)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadFromFile() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "storage: [not: a: mapping")

	_, err := LoadFromFile(path)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("LoadFromFile() error = %v, want ErrInvalidYAML", err)
	}
}

func TestLoadFromFileInvalidValues(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
display:
  boulder_system: uiaa
`)

	if _, err := LoadFromFile(path); !errors.Is(err, ErrInvalidGradeSystem) {
		t.Errorf("LoadFromFile() error = %v, want ErrInvalidGradeSystem", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  db_path: /tmp/from-file.db
`)

	t.Setenv("CRAGTRACK_DB", "/tmp/from-env.db")
	t.Setenv("CRAGTRACK_REMOTE_URL", "https://api.example.com")
	t.Setenv("CRAGTRACK_USER_ID", "user-9")
	t.Setenv("CRAGTRACK_REMOTE_TIMEOUT", "5s")
	t.Setenv("CRAGTRACK_LOG_LEVEL", "debug")

	cfg, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.DBPath != "/tmp/from-env.db" {
		t.Errorf("DBPath = %q, want env value", cfg.Storage.DBPath)
	}
	if cfg.Remote.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q, want env value", cfg.Remote.BaseURL)
	}
	if cfg.Remote.UserID != "user-9" {
		t.Errorf("UserID = %q, want user-9", cfg.Remote.UserID)
	}
	if cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Remote.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Storage.DBPath = "/tmp/roundtrip.db"
	cfg.Display.BoulderSystem = "font"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Storage.DBPath != cfg.Storage.DBPath {
		t.Errorf("DBPath = %q, want %q", loaded.Storage.DBPath, cfg.Storage.DBPath)
	}
	if loaded.Display.BoulderSystem != "font" {
		t.Errorf("BoulderSystem = %q, want font", loaded.Display.BoulderSystem)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Storage.DBPath = ""

	err := Save(cfg, filepath.Join(t.TempDir(), "config.yaml"))
	if !errors.Is(err, ErrEmptyDBPath) {
		t.Errorf("Save() error = %v, want ErrEmptyDBPath", err)
	}
}
