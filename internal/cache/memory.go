package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps small payloads in process memory with expiry.
// Payloads above maxEntryBytes are refused so whole corpora stay on disk.
type MemoryCache struct {
	items         *gocache.Cache
	maxEntryBytes int
}

// NewMemoryCache creates a memory cache; ttl 0 on Set uses defaultTTL, maxEntryBytes <= 0 disables the bound
func NewMemoryCache(defaultTTL time.Duration, maxEntryBytes int) *MemoryCache {
	return &MemoryCache{
		items:         gocache.New(defaultTTL, 2*defaultTTL),
		maxEntryBytes: maxEntryBytes,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

// Set stores a payload, silently skipping oversized ones
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if c.maxEntryBytes > 0 && len(value) > c.maxEntryBytes {
		c.items.Delete(key)
		return nil
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len returns the number of held payloads, expired ones included until cleanup
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
