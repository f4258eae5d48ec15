package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestPageCacheBackends(t *testing.T) {
	lruCache, err := NewLRUCache(8)
	require.NoError(t, err)
	redisCache, _ := newRedis(t)

	backends := map[string]PageCache{"lru": lruCache, "redis": redisCache}
	for name, c := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			page := &Page{Status: 200, ContentType: "text/html; charset=utf-8", Body: []byte("<p>hi</p>")}

			_, err := c.Get(ctx, "/:0")
			assert.ErrorIs(t, err, ErrCacheMiss)

			require.NoError(t, c.Set(ctx, "/:0", page, time.Minute))
			got, err := c.Get(ctx, "/:0")
			require.NoError(t, err)
			assert.Equal(t, page, got)

			require.NoError(t, c.Set(ctx, "/?page=2:0", page, 0))
			_, err = c.Get(ctx, "/?page=2:0")
			assert.ErrorIs(t, err, ErrCacheMiss, "zero ttl disables caching")

			require.NoError(t, c.Clear(ctx))
			_, err = c.Get(ctx, "/:0")
			assert.ErrorIs(t, err, ErrCacheMiss)
		})
	}
}

func TestLRUCacheExpires(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)
	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", &Page{Status: 200}, 20*time.Second))

	now = now.Add(19 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c, err := NewLRUCache(2)
	require.NoError(t, err)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, &Page{Status: 200}, time.Minute))
	}
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestRedisCacheExpiresAndKeepsOtherKeys(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("sessions:abc", "keep"))
	require.NoError(t, c.Set(ctx, "/:0", &Page{Status: 200}, 20*time.Second))

	mr.FastForward(21 * time.Second)
	_, err := c.Get(ctx, "/:0")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "/:0", &Page{Status: 200}, 20*time.Second))
	require.NoError(t, c.Clear(ctx))
	assert.True(t, mr.Exists("sessions:abc"))
	assert.False(t, mr.Exists(keyPrefix+"/:0"))
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url")
	assert.Error(t, err)
}
