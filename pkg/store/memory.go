package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// memoryGateway implements Gateway in memory. Used by tests and by callers
// that want the core without durable storage.
type memoryGateway struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory gateway.
func NewMemory() Gateway {
	return &memoryGateway{
		records: make(map[string][]byte),
	}
}

// Load implements Gateway.Load.
func (g *memoryGateway) Load(key string, v interface{}) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	g.mu.RLock()
	data, ok := g.records[key]
	g.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal record %s: %w", key, err)
	}

	return true, nil
}

// Save implements Gateway.Save.
func (g *memoryGateway) Save(key string, v interface{}) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}

	g.mu.Lock()
	g.records[key] = data
	g.mu.Unlock()

	return nil
}

// Delete implements Gateway.Delete.
func (g *memoryGateway) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	g.mu.Lock()
	delete(g.records, key)
	g.mu.Unlock()

	return nil
}

// Close implements Gateway.Close.
func (g *memoryGateway) Close() error {
	return nil
}
