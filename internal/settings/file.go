package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore is a Store backed by a JSON file, written through on every Set.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	data     fileData
}

type fileData struct {
	Version     string          `json:"version"`
	LastUpdated time.Time       `json:"last_updated"`
	Values      map[string]bool `json:"values"`
}

// Compile-time verification that FileStore implements Store
var _ Store = (*FileStore)(nil)

// OpenFile loads the settings file at filePath.
// A missing file yields an empty store; the file is created on the first Set.
func OpenFile(filePath string) (*FileStore, error) {
	s := &FileStore{
		filePath: filePath,
		data: fileData{
			Version: "1",
			Values:  make(map[string]bool),
		},
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath comes from configuration
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", filePath, err)
	}
	if s.data.Values == nil {
		s.data.Values = make(map[string]bool)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.filePath
}

// Get returns the stored value for key, or false if absent.
func (s *FileStore) Get(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Values[key], nil
}

// Set stores value under key and persists the file atomically.
// On a write failure the in-memory value is rolled back.
func (s *FileStore) Set(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.data.Values[key]
	s.data.Values[key] = value

	if err := s.saveUnlocked(); err != nil {
		if existed {
			s.data.Values[key] = previous
		} else {
			delete(s.data.Values, key)
		}
		return err
	}
	return nil
}

// saveUnlocked writes to a temp file and renames it over the target.
// Caller must hold the lock
func (s *FileStore) saveUnlocked() error {
	s.data.LastUpdated = time.Now()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings for %s: %w", s.filePath, err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "settings-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in directory %s for settings %s: %w", dir, s.filePath, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()    // Best effort cleanup
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to write temp file %s for settings %s: %w", tmpPath, s.filePath, err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()    // Best effort cleanup
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to sync temp file %s for settings %s: %w", tmpPath, s.filePath, err)
	}

	_ = tmpFile.Close() // Already synced

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to rename temp file %s to %s: %w", tmpPath, s.filePath, err)
	}

	return nil
}
