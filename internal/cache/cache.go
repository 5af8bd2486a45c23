// Package cache provides an in-memory memo table that lives for one session.
package cache

import (
	"sync"

	"github.com/samber/mo"
)

// Cache maps keys to computed values. Entries are never evicted.
type Cache[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V
}

// New returns an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{data: make(map[K]V)}
}

// Get returns the value stored under key, if any.
func (c *Cache[K, V]) Get(key K) mo.Option[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.data[key]; ok {
		return mo.Some(v)
	}
	return mo.None[V]()
}

// Set stores v under key, replacing any previous value.
func (c *Cache[K, V]) Set(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = v
}

// GetOrCompute returns the cached value for key, calling compute on a miss.
// A failed compute stores nothing, so the next call tries again.
// The lock is held across compute: concurrent callers for any key wait,
// which keeps compute to at most one successful call per key.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.data[key]; ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.data[key] = v
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.data)
}
