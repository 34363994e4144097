// Package cache provides an optional Redis-backed read cache for
// availability answers. All operations are nil-safe: with no Redis
// configured every read misses and every write is a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client with a TTL and JSON encoding.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a cache. A nil client or non-positive TTL disables it.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Enabled reports whether the cache is wired to a live client.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// SlotsKey is the cache key for a date's available-slot list.
func SlotsKey(date string) string {
	return fmt.Sprintf("slots:%s", date)
}

// Get loads key into out, reporting whether the cache answered.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	if !c.Enabled() {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

// Set stores val under key with the cache TTL. Failures are ignored.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops keys. Failures are ignored; a stale entry expires by
// TTL anyway.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
