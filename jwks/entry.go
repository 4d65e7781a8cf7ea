package jwks

import (
	"sync"
	"time"
)

// entry is a single cache slot holding a value and the time it was fetched.
//
// The zero value is empty. Reads take the read lock, writes take the write
// lock only to install a fetched value; fetching itself happens outside the
// slot so that hits never wait on the network.
type entry[T any] struct {
	mu        sync.RWMutex
	value     T
	fetchedAt time.Time
	filled    bool
}

// load returns the cached value if the slot is filled and now-fetchedAt < ttl.
func (e *entry[T]) load(now time.Time, ttl time.Duration) (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.filled || now.Sub(e.fetchedAt) >= ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// store replaces the value and timestamp together.
func (e *entry[T]) store(value T, fetchedAt time.Time) {
	e.mu.Lock()
	e.value = value
	e.fetchedAt = fetchedAt
	e.filled = true
	e.mu.Unlock()
}
