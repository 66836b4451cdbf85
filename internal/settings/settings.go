// Package settings persists the operator's dashboard settings.
package settings

import (
	"fmt"
	"sync"
)

// Keys under which the two dashboard settings are persisted.
const (
	KeyAutoUpdate = "autoUpdate"
	KeySwarmMode  = "swarmMode"
)

// Store is a string-keyed boolean key-value store. Absent keys read as false.
type Store interface {
	Get(key string) (bool, error)
	Set(key string, value bool) error
}

// Settings are the two independent operator toggles.
type Settings struct {
	AutoUpdate bool `json:"autoUpdate"`
	SwarmMode  bool `json:"swarmMode"`
}

// Load reads both settings from store.
func Load(store Store) (Settings, error) {
	autoUpdate, err := store.Get(KeyAutoUpdate)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read setting %s: %w", KeyAutoUpdate, err)
	}
	swarmMode, err := store.Get(KeySwarmMode)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read setting %s: %w", KeySwarmMode, err)
	}
	return Settings{AutoUpdate: autoUpdate, SwarmMode: swarmMode}, nil
}

// Save writes both settings to store.
func Save(store Store, s Settings) error {
	if err := store.Set(KeyAutoUpdate, s.AutoUpdate); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", KeyAutoUpdate, err)
	}
	if err := store.Set(KeySwarmMode, s.SwarmMode); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", KeySwarmMode, err)
	}
	return nil
}

// MemoryStore is an in-process Store, used when no settings file is configured.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]bool
}

// Compile-time verification that MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]bool)}
}

// Get returns the stored value or false.
func (m *MemoryStore) Get(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

// Set stores value under key.
func (m *MemoryStore) Set(key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
