// Package store defines the key-value capability shared by all
// connections.
//
// The interface is deliberately narrow so the locking discipline lives in
// one place and an implementation can be swapped (for example, a sharded
// map) without touching callers.
package store

// Store is a shared mapping from key to value.
//
// Implementations must be safe for concurrent use by many goroutines.
// Mutations are observed atomically: a concurrent Get sees either the
// previous value or the new one, never a partial write.
type Store interface {
	// Set stores value under key, overwriting any existing entry.
	// It always succeeds.
	Set(key string, value []byte)

	// Get returns the value stored under key. It has no side effects.
	Get(key string) ([]byte, bool)
}
