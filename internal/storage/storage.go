package storage

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInvalidKey indicates an empty or whitespace-only key.
	ErrInvalidKey = errors.New("key must not be empty")
)

// Storage is a mutable key/value source. Chains read it on every lookup, so
// changes are visible immediately.
type Storage interface {
	Lookup(key string) (any, bool)
	Keys() []string
	Set(key string, value any) error
}

// MemoryStorage keeps values in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStorage initialises storage with a copy of initial.
func NewMemoryStorage(initial map[string]any) *MemoryStorage {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryStorage{values: values}
}

// Lookup returns the value stored for key.
func (s *MemoryStorage) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set validates key and stores value. A nil value makes the key fall through
// to lower priority sources without removing it.
func (s *MemoryStorage) Set(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	return nil
}
