// Package cache provides a small generic TTL cache used by the service layer.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTLCache is a concurrency-safe map cache whose entries expire after a fixed
// duration. Expired entries are dropped lazily on read.
type TTLCache[K comparable, V any] struct {
	mu  sync.RWMutex
	m   map[K]entry[V]
	ttl time.Duration
	now func() time.Time
}

// NewTTL creates a cache whose entries live for ttl.
func NewTTL[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		m:   make(map[K]entry[V]),
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached value and whether it is present and unexpired.
func (c *TTLCache[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	e, ok := c.m[k]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.m, k)
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the cache's TTL.
func (c *TTLCache[K, V]) Set(k K, v V) {
	c.mu.Lock()
	c.m[k] = entry[V]{value: v, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes a key.
func (c *TTLCache[K, V]) Delete(k K) {
	c.mu.Lock()
	delete(c.m, k)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	c.m = make(map[K]entry[V])
	c.mu.Unlock()
}

// SetClock overrides the clock, for tests.
func (c *TTLCache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
