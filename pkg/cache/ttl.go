package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a collection stays fresh when no TTL is configured.
const DefaultTTL = 120 * time.Second

// entry is a cached value and the time it was stored.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// expired reports whether the entry is no longer visible at now.
func (e entry[V]) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.storedAt) >= ttl
}

// TTL is an in-memory, process-lifetime cache whose entries become invisible
// once they are ttl old. Expired entries are purged lazily on the next lookup
// of their key; there is no background sweep and no size bound, so the key
// space must stay small (one entry per requested entity and kind).
//
// TTL is safe for concurrent use. The lock covers map access only.
type TTL[K comparable, V any] struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[K]entry[V]
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for simulated time in tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewTTL creates a cache. name labels the cache in metrics; a non-positive
// ttl falls back to DefaultTTL.
func NewTTL[K comparable, V any](name string, ttl time.Duration, opts ...Option) *TTL[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &TTL[K, V]{
		name:    name,
		ttl:     ttl,
		now:     o.now,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the value for key if present and fresh. A stale entry is
// deleted and reported as a miss.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.expired(now, c.ttl) {
		delete(c.entries, key)
		size := len(c.entries)
		c.mu.Unlock()

		CacheExpired.WithLabelValues(c.name).Inc()
		CacheMisses.WithLabelValues(c.name).Inc()
		CacheEntries.WithLabelValues(c.name).Set(float64(size))

		var zero V
		return zero, false
	}
	c.mu.Unlock()

	if !ok {
		CacheMisses.WithLabelValues(c.name).Inc()
		var zero V
		return zero, false
	}

	CacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores value under key, overwriting any previous entry.
func (c *TTL[K, V]) Set(key K, value V) {
	e := entry[V]{value: value, storedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = e
	size := len(c.entries)
	c.mu.Unlock()

	CacheEntries.WithLabelValues(c.name).Set(float64(size))
}

// Delete removes key. Idempotent.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	CacheEntries.WithLabelValues(c.name).Set(float64(size))
}

// Len returns the number of stored entries, including stale ones not yet
// purged.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the configured time-to-live.
func (c *TTL[K, V]) TTL() time.Duration {
	return c.ttl
}
