package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache is an in-memory key/value store with a single process-wide TTL.
// Expiry is lazy: an expired entry is evicted by the Get that observes it,
// there is no background sweep. A TTL of zero or less disables the cache
// entirely: Get always misses and Set is a no-op.
//
// Safe for concurrent use. Two concurrent Sets for the same key race and
// the last writer wins, which is fine: values for a key are idempotent
// across near-simultaneous fetches.
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry[V]
}

type entry[V any] struct {
	expiresAt time.Time
	value     V
}

// New creates a cache with the given TTL.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the value stored under key if the entry is still live.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c.ttl <= 0 {
		return zero, false
	}
	key = normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry as a whole.
func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	key = normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{
		expiresAt: c.now().Add(c.ttl),
		value:     value,
	}
}

// Len reports the number of entries, counting not-yet-evicted expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key joins parts into a cache key. Parts are upper-cased so "aapl" and
// "AAPL" address the same entry.
func Key(parts ...string) string {
	return strings.ToUpper(strings.Join(parts, "|"))
}

func normalizeKey(key string) string {
	return strings.ToUpper(key)
}
