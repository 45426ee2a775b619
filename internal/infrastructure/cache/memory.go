// Package cache layers an in-process go-cache store over the shared redis
// cache and decorates the claim repository with it.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is one cache layer holding encoded claim records.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache is the process-local layer. A ttl of 0 on Set uses the
// default the cache was built with.
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true, nil
	}
	return nil, false, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// ItemCount includes expired items not yet cleaned up.
func (c *MemoryCache) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *MemoryCache) Flush() {
	c.cache.Flush()
}
