// Package cache provides a process-lifetime, in-memory TTL cache for
// per-entity collections (friends, groups, badges lists).
//
// The cache implements the following behaviour:
//
// - Entries are visible only while younger than the configured TTL (default 120s)
// - Stale entries are deleted lazily on the next lookup of the same key
// - Set always overwrites
// - No size bound and no persistence: the key space is one entry per requested
// entity and resource kind
// - Prometheus metrics per named cache
//
// # Basic Usage
//
//	friends := cache.NewTTL[int64, []Friend]("friends", 2*time.Minute)
//
//	if list, ok := friends.Get(userID); ok {
//		return list, nil
//	}
//	list, err := fetchFriends(ctx, userID)
//	if err != nil {
//		return nil, err
//	}
//	friends.Set(userID, list)
//
// # Simulated Time
//
//	now := time.Unix(0, 0)
//	c := cache.NewTTL[string, int]("test", time.Minute, cache.WithClock(func() time.Time { return now }))
//
// # Keys
//
// Key builds deterministic string keys when a cache is shared across kinds:
//
//	cache.Key{Kind: "badges", ID: 261}.String() // rbx:badges:261
//
// # Metrics
//
//   - rbx_cache_hits_total{cache} - Cache hits
//   - rbx_cache_misses_total{cache} - Cache misses (absent or expired)
//   - rbx_cache_expired_total{cache} - Stale entries purged on lookup
//   - rbx_cache_entries{cache} - Stored entries
package cache
