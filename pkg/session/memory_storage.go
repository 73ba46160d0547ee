package session

import (
	"context"
	"sync"
)

// MemoryStorage is a process-local Storage, the tab-scoped tier.
// Safe for concurrent use.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements Storage.
func (s *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set implements Storage.
func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Delete implements Storage. Missing keys are ignored.
func (s *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
