// Package memory provides the in-memory store implementation.
//
// It guards a single map with one mutex. Whole-map exclusive access per
// operation is intentional: the invariant (at most one mutator touches the
// mapping at a time) is trivial to verify, and no store operation blocks,
// so a guard is never held across I/O.
package memory

import "sync"

// Store is a mutex-guarded map from key to value. Lifetime spans the
// process; entries never expire.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{
		items: make(map[string][]byte),
	}
}

// Set stores value under key, overwriting any existing entry.
// The value is copied so later mutation of the caller's slice cannot
// change what readers observe.
func (s *Store) Set(key string, value []byte) {
	clone := make([]byte, len(value))
	copy(clone, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = clone
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, false
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	return clone, true
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
