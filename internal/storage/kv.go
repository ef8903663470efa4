package storage

import (
	"fmt"
	"path/filepath"
	"sync"
)

// KV is a minimal string key-value store, the local equivalent of browser
// local storage.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// File names used inside the data directory.
const (
	jsonFileName   = "bookmarks.json"
	sqliteFileName = "bookmarks.db"
)

// Open creates the KV backend named by backend inside dataDir.
// The returned close function releases backend resources.
func Open(backend, dataDir string) (KV, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case "", BackendJSON:
		return NewFileKV(filepath.Join(dataDir, jsonFileName)), noop, nil
	case BackendSQLite:
		s, err := NewSQLiteKV(filepath.Join(dataDir, sqliteFileName))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return NewMemoryKV(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemoryKV implements KV in memory. Nothing survives the process.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
