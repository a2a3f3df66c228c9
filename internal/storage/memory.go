package storage

import (
	"context"
	"sync"
)

// MemoryStorage keeps entries in process memory only
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[Key]string
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[Key]string)}
}

// Get implements Storage
func (m *MemoryStorage) Get(_ context.Context, key Key) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

// Set implements Storage
func (m *MemoryStorage) Set(_ context.Context, key Key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Delete implements Storage
func (m *MemoryStorage) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close implements Storage
func (m *MemoryStorage) Close() error {
	return nil
}
