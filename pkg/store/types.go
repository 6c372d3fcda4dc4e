// Package store provides the durable persistence gateway for cragtrack.
//
// The gateway is a key-value load/save surface over four fixed logical
// records: the climb collection, the active session slot, the session
// metadata side-table, and the app settings. Values are JSON-encoded. Absent
// records load as "not found" so callers can fall back to empty defaults.
//
// Example usage:
//
//	gw, err := store.Open(store.Config{
//	    DBPath: "~/.config/cragtrack/cragtrack.db",
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gw.Close()
//
//	var climbs []climb.Climb
//	found, err := gw.Load(store.KeyClimbs, &climbs)
package store

import "time"

// Fixed logical record names.
const (
	// KeyClimbs holds the flat climb collection.
	KeyClimbs = "climbs"

	// KeyActiveSession holds the single active session slot.
	KeyActiveSession = "activeSession"

	// KeySessions holds the session metadata side-table.
	KeySessions = "sessions"

	// KeyAppSettings holds the user's app settings.
	KeyAppSettings = "appSettings"
)

// Gateway persists cragtrack's logical records.
type Gateway interface {
	// Load reads the record stored under key into v.
	//
	// Returns:
	//   - (true, nil) when the record exists and was decoded
	//   - (false, nil) when no record exists yet (v is left untouched)
	//   - (false, error) for storage or decode failures
	Load(key string, v interface{}) (bool, error)

	// Save JSON-encodes v and writes it under key, replacing any
	// previous value.
	Save(key string, v interface{}) error

	// Delete removes the record stored under key.
	// Does not error if the record doesn't exist.
	Delete(key string) error

	// Close releases the underlying storage.
	Close() error
}

// Config contains gateway configuration.
type Config struct {
	// DBPath is the BoltDB file path. ~ is expanded.
	DBPath string

	// Timeout is the database open timeout (default: 1 second).
	Timeout time.Duration
}
