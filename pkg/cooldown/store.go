// Package cooldown enforces a minimum interval between requests of the same
// caller. State lives in memory for a single process or in Redis when
// several gateway replicas share callers.
package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces cooldown keys in shared stores.
const KeyPrefix = "rbx:cooldown:"

// Store records caller cooldowns.
type Store interface {
	// Acquire starts a cooldown of length window for key unless one is
	// already running. It returns false and the remaining time when the key
	// is still cooling down.
	Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration, error)
}

// MemoryStore keeps cooldowns in process memory. Expired keys are purged
// lazily when they are next acquired.
type MemoryStore struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

// NewMemoryStore creates an in-memory store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		until: make(map[string]time.Time),
		now:   now,
	}
}

// Acquire implements Store.
func (m *MemoryStore) Acquire(_ context.Context, key string, window time.Duration) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.until[key]; ok {
		if remaining := until.Sub(now); remaining > 0 {
			return false, remaining, nil
		}
		delete(m.until, key)
	}

	m.until[key] = now.Add(window)
	return true, 0, nil
}

// Len returns the number of tracked keys, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.until)
}

// RedisStore keeps cooldowns in Redis as keys with a PX expiry.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

// Acquire implements Store with SET NX PX; a held key reports its PTTL.
func (r *RedisStore) Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration, error) {
	// Two rounds cover a key that expires between SETNX and PTTL.
	for i := 0; i < 2; i++ {
		ok, err := r.redis.SetNX(ctx, key, 1, window).Result()
		if err != nil {
			return false, 0, fmt.Errorf("set cooldown key: %w", err)
		}
		if ok {
			return true, 0, nil
		}

		ttl, err := r.redis.PTTL(ctx, key).Result()
		if err != nil {
			return false, 0, fmt.Errorf("get cooldown ttl: %w", err)
		}
		if ttl > 0 {
			return false, ttl, nil
		}
	}

	return false, window, nil
}
