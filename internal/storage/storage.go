package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KV is a synchronous string key-value store.
type KV interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// FileStore keeps one file per key under a base directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates a new FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

// sanitizeKey makes the key safe for filenames.
func sanitizeKey(key string) string {
	return strings.NewReplacer(":", "-", "/", "_", "\\", "_", "..", "_").Replace(key)
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.basePath, sanitizeKey(key)+".value")
}

// Get reads the value file for key.
func (s *FileStore) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read value for %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes the value through a temporary file so a crash never leaves a
// half-written value behind.
func (s *FileStore) Set(key, value string) error {
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write value for %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace value for %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value file for key.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove value for %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process KV, used by tests and ephemeral sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type prefixed struct {
	kv     KV
	prefix string
}

// Prefixed namespaces every key of kv under prefix, so several users can
// share one backing store.
func Prefixed(kv KV, prefix string) KV {
	return &prefixed{kv: kv, prefix: prefix + ":"}
}

func (p *prefixed) Get(key string) (string, bool, error) { return p.kv.Get(p.prefix + key) }
func (p *prefixed) Set(key, value string) error          { return p.kv.Set(p.prefix+key, value) }
func (p *prefixed) Remove(key string) error              { return p.kv.Remove(p.prefix + key) }
