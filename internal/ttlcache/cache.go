// Package ttlcache provides time-bounded memoization with a hard capacity
// limit and explicit invalidation.
//
// A Cache is process-local state: it offers no cross-process coherency, and
// multi-worker deployments that need shared freshness must put an external
// cache behind the same interface. Within one process it is safe for
// concurrent use; a single mutex guards the entry map, and the compute
// function runs under it so a cold key is computed at most once.
package ttlcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Cache memoizes computed values per key until their TTL elapses. When an
// insert pushes the cache past its capacity, the single entry with the
// oldest write timestamp is evicted (recency of last write, not last read).
type Cache[V any] struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]entry[V]

	now func() time.Time // overridable in tests
}

// New creates a cache holding at most maxSize entries. A non-positive
// maxSize falls back to a single entry.
func New[V any](maxSize int) *Cache[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache[V]{
		maxSize: maxSize,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached value for key if it is younger than ttl;
// otherwise it calls compute, stores the result with a fresh timestamp, and
// returns it. A compute error is returned as-is and nothing is stored.
func (c *Cache[V]) GetOrCompute(key string, ttl time.Duration, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok && now.Sub(e.createdAt) < ttl {
		return e.value, nil
	}

	value, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.entries[key] = entry[V]{value: value, createdAt: now}
	if len(c.entries) > c.maxSize {
		c.evictOldestLocked()
	}
	return value, nil
}

// Clear removes all entries unconditionally.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len returns the current number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.createdAt.Before(oldestAt) {
			first = false
			oldestKey = k
			oldestAt = e.createdAt
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
