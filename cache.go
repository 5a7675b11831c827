package vaultfs

import (
	"slices"
	"sync"
)

// DefaultCacheSize is the number of listings a Cache holds by default.
const DefaultCacheSize = 256

// Cache is a bounded LRU of directory listings keyed by plaintext path.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	listings map[string][]Entry
	lru      []string // least recently used first
}

// NewCache returns a cache holding up to capacity listings.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		listings: make(map[string][]Entry),
		lru:      make([]string, 0, capacity),
	}
}

// Get returns a copy of the cached listing of dir.
func (c *Cache) Get(dir string) ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.listings[dir]
	if !ok {
		return nil, false
	}
	c.touch(dir)
	return slices.Clone(entries), true
}

// Put stores a copy of the listing of dir, evicting the least recently
// used listing when full.
func (c *Cache) Put(dir string, entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.listings[dir]; ok {
		c.touch(dir)
	} else {
		if len(c.listings) >= c.capacity && len(c.lru) > 0 {
			delete(c.listings, c.lru[0])
			c.lru = c.lru[1:]
		}
		c.lru = append(c.lru, dir)
	}
	c.listings[dir] = slices.Clone(entries)
}

// Invalidate drops the listing of dir.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.listings[dir]; !ok {
		return
	}
	delete(c.listings, dir)
	if i := slices.Index(c.lru, dir); i >= 0 {
		c.lru = slices.Delete(c.lru, i, i+1)
	}
}

// Len returns the number of cached listings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listings)
}

func (c *Cache) touch(dir string) {
	if i := slices.Index(c.lru, dir); i >= 0 {
		c.lru = append(slices.Delete(c.lru, i, i+1), dir)
	}
}
