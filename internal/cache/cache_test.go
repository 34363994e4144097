package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	slots := []string{"10:00", "10:30", "11:00"}
	c.Set(ctx, SlotsKey("2026-06-01"), slots)

	var got []string
	hit := c.Get(ctx, SlotsKey("2026-06-01"), &got)
	assert.True(t, hit)
	assert.Equal(t, slots, got)
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got []string
	hit := c.Get(context.Background(), SlotsKey("2026-06-02"), &got)
	assert.False(t, hit)
}

func TestCacheInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, SlotsKey("2026-06-01"), []string{"10:00"})
	assert.True(t, mr.Exists(SlotsKey("2026-06-01")))

	c.Invalidate(ctx, SlotsKey("2026-06-01"))
	assert.False(t, mr.Exists(SlotsKey("2026-06-01")))
}

func TestCacheTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, SlotsKey("2026-06-01"), []string{"10:00"})
	mr.FastForward(2 * time.Minute)

	var got []string
	hit := c.Get(ctx, SlotsKey("2026-06-01"), &got)
	assert.False(t, hit, "entry must expire after the TTL")
}

func TestCacheDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.False(t, c.Enabled())
	c.Set(ctx, "k", "v")
	var got string
	assert.False(t, c.Get(ctx, "k", &got))
	c.Invalidate(ctx, "k")

	empty := New(nil, 0)
	assert.False(t, empty.Enabled())
}
