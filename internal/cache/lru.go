package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type lruItem struct {
	page      *Page
	expiresAt time.Time
}

// LRUCache keeps pages in process memory, bounded by entry count.
type LRUCache struct {
	lruCache *lru.Cache[string, lruItem]
	now      func() time.Time
}

func NewLRUCache(size int) (*LRUCache, error) {
	l, err := lru.New[string, lruItem](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lruCache: l, now: time.Now}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) (*Page, error) {
	val, ok := c.lruCache.Get(keyPrefix + key)
	if !ok {
		return nil, ErrCacheMiss
	}

	if !c.now().Before(val.expiresAt) {
		c.lruCache.Remove(keyPrefix + key)
		return nil, ErrCacheMiss
	}
	return val.page, nil
}

func (c *LRUCache) Set(_ context.Context, key string, page *Page, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.lruCache.Add(keyPrefix+key, lruItem{page: page, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *LRUCache) Clear(_ context.Context) error {
	c.lruCache.Purge()
	return nil
}

func (c *LRUCache) Close() error { return nil }
