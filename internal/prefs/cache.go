package prefs

import (
	"github.com/coocood/freecache"
)

// Cache is an in-process byte cache in front of the preference backend.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

// NewCache returns a freecache-backed cache of sizeMB megabytes, or a cache
// that stores nothing when sizeMB is not positive.
func NewCache(sizeMB int) Cache {
	if sizeMB <= 0 {
		return noopCache{}
	}
	return &memCache{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

type memCache struct {
	cache *freecache.Cache
}

func (c *memCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *memCache) Set(key string, value []byte) {
	// Entries never expire. A value too large for the cache must not leave a
	// stale entry behind.
	if err := c.cache.Set([]byte(key), value, 0); err != nil {
		c.cache.Del([]byte(key))
	}
}

func (c *memCache) Del(key string) {
	c.cache.Del([]byte(key))
}

type noopCache struct{}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}
func (noopCache) Del(string)                {}
