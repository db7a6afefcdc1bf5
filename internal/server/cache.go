package server

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache is a TTL cache where every entry costs 1.
type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

// NewCache creates a cache holding up to maxCost entries for ttl each.
func NewCache(maxCost int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

// Set stores val. It reports false when the cache dropped the write.
func (c *Cache) Set(key string, val any) bool { return c.c.SetWithTTL(key, val, 1, c.ttl) }

func (c *Cache) Del(key string) { c.c.Del(key) }

// Wait blocks until buffered writes are applied.
func (c *Cache) Wait() { c.c.Wait() }

func (c *Cache) Close() { c.c.Close() }
