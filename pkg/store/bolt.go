package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cragtrack/cragtrack/pkg/logger"
	bolt "go.etcd.io/bbolt"
)

// bucketRecords holds every logical record, keyed by record name.
var bucketRecords = []byte("records")

// boltGateway implements the Gateway interface using BoltDB.
type boltGateway struct {
	db     *bolt.DB
	logger logger.Logger
}

// Open creates a BoltDB-backed gateway.
//
// Parameters:
//   - cfg: Gateway configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Gateway
//   - Error if database cannot be opened
func Open(cfg Config, log logger.Logger) (Gateway, error) {
	// Set default timeout.
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath := expandHome(cfg.DBPath)

	// Create directory if it doesn't exist.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		if _, createErr := tx.CreateBucketIfNotExists(bucketRecords); createErr != nil {
			return fmt.Errorf("failed to create records bucket: %w", createErr)
		}
		return nil
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, err
	}

	log.Info("persistence gateway opened", "db_path", dbPath)

	return &boltGateway{
		db:     db,
		logger: log,
	}, nil
}

// Load implements Gateway.Load.
func (g *boltGateway) Load(key string, v interface{}) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	var found bool

	err := g.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(key))
		if data == nil {
			return nil
		}

		if unmarshalErr := json.Unmarshal(data, v); unmarshalErr != nil {
			return fmt.Errorf("failed to unmarshal record %s: %w", key, unmarshalErr)
		}

		found = true
		return nil
	})

	if err != nil {
		return false, err
	}

	return found, nil
}

// Save implements Gateway.Save.
func (g *boltGateway) Save(key string, v interface{}) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}

	return g.db.Update(func(tx *bolt.Tx) error {
		if putErr := tx.Bucket(bucketRecords).Put([]byte(key), data); putErr != nil {
			return fmt.Errorf("failed to store record %s: %w", key, putErr)
		}
		return nil
	})
}

// Delete implements Gateway.Delete.
func (g *boltGateway) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	return g.db.Update(func(tx *bolt.Tx) error {
		if delErr := tx.Bucket(bucketRecords).Delete([]byte(key)); delErr != nil {
			return fmt.Errorf("failed to delete record %s: %w", key, delErr)
		}
		return nil
	})
}

// Close implements Gateway.Close.
func (g *boltGateway) Close() error {
	if err := g.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	g.logger.Info("persistence gateway closed")
	return nil
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
