package cache

import (
	"sync"
	"time"

	"github.com/smallbiznis/billinginsights/internal/clock"
)

// Cache provides a minimal TTL cache interface for hot-path lookups.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache stores values in-memory with per-entry TTLs.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	clock clock.Clock
	items map[K]cacheEntry[V]
}

// NewTTLCache constructs a TTLCache that expires entries against clk.
func NewTTLCache[K comparable, V any](clk clock.Clock) *TTLCache[K, V] {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &TTLCache[K, V]{clock: clk, items: make(map[K]cacheEntry[V])}
}

// Get returns a cached value if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !entry.expiresAt.IsZero() && !c.clock.Now().Before(entry.expiresAt) {
		c.Delete(key)
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the provided TTL. A non-positive TTL never expires.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.clock.Now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = cacheEntry[V]{
		value:     value,
		expiresAt: expiresAt,
	}
	c.mu.Unlock()
}

// Delete removes a cached entry.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *TTLCache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// NoopCache always returns cache misses and ignores writes.
type NoopCache[K comparable, V any] struct{}

func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

func (NoopCache[K, V]) Delete(key K) {}
