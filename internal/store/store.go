// Package store provides the string key-value backends that stand in for
// browser local storage. Components own disjoint keys, so backends only need
// to serialize individual operations.
package store

import (
	"fmt"
	"sort"
	"sync"
)

// KV is a persistent string key-value store.
type KV interface {
	// Get returns the value and true if the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Keys returns all keys in sorted order.
	Keys() ([]string, error)
	Close() error
}

// Open returns the backend named by kind ("memory", "sqlite", "file").
func Open(kind, path string) (KV, error) {
	switch kind {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewLocalStore(path)
	case "file":
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", kind)
	}
}

// MemoryStore keeps values in RAM. Used by tests and throwaway sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
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

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.values), nil
}

func (m *MemoryStore) Close() error { return nil }

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
