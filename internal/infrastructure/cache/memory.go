package cache

import (
	"strings"
	"time"

	"marketplace-backend/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache backs the entity, stats and QR caches with go-cache.
func NewMemoryCache(ttl, sweep time.Duration) cache.CacheService {
	return &memoryCache{items: gocache.New(ttl, sweep)}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.items.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, value, ttl)
}

func (c *memoryCache) Delete(key string) {
	c.items.Delete(key)
}

func (c *memoryCache) DeletePrefix(prefix string) int {
	n := 0
	for key := range c.items.Items() {
		if strings.HasPrefix(key, prefix) {
			c.items.Delete(key)
			n++
		}
	}
	return n
}

func (c *memoryCache) Flush() {
	c.items.Flush()
}
