package resolver

import (
	"sync"
)

type cacheKey struct {
	text  string
	scope string
}

type cacheEntry struct {
	t         *Type
	pathBound bool
}

// Cache memoizes resolutions by (cleaned text, scope). An empty scope is the
// global scope. Entries are written once and never replaced.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	hits    int
	misses  int
}

// NewCache creates an empty cache. Create one per analysis run.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Get returns the cached type for the key.
func (c *Cache) Get(text, scope string) (*Type, bool) {
	entry, ok := c.get(text, scope)
	return entry.t, ok
}

func (c *Cache) get(text, scope string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[cacheKey{text: text, scope: scope}]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return entry, ok
}

// PutIfAbsent stores t unless the key is already present and returns the
// stored value.
func (c *Cache) PutIfAbsent(text, scope string, t *Type) *Type {
	return c.putIfAbsent(text, scope, cacheEntry{t: t, pathBound: pathBound(t)})
}

func (c *Cache) putIfAbsent(text, scope string, entry cacheEntry) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{text: text, scope: scope}
	if existing, ok := c.entries[key]; ok {
		return existing.t
	}
	c.entries[key] = entry
	return entry.t
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
