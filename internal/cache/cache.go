// Package cache stores whole rendered pages for a short time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yatube/internal/config"
	"yatube/internal/logging"
)

var ErrCacheMiss = errors.New("cache miss")

// keyPrefix namespaces page entries so Clear never touches other data.
const keyPrefix = "yatube:page:"

// Page is a captured HTTP response.
type Page struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageCache is implemented by the Redis and in-process backends.
type PageCache interface {
	// Get returns ErrCacheMiss when nothing fresh is stored under key.
	Get(ctx context.Context, key string) (*Page, error)
	Set(ctx context.Context, key string, page *Page, ttl time.Duration) error
	// Clear drops every page entry.
	Clear(ctx context.Context) error
	Close() error
}

// New returns a Redis cache when REDIS_URL is set and an LRU cache otherwise.
func New(cfg *config.Config) (PageCache, error) {
	if cfg.RedisURL == "" {
		logging.L().Info().Int("size", cfg.CacheSize).Msg("using in-process page cache")
		return NewLRUCache(cfg.CacheSize)
	}

	c, err := NewRedisCache(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("init redis page cache: %w", err)
	}
	logging.L().Info().Msg("using redis page cache")
	return c, nil
}
