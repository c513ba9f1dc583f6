package cache

import "sync"

// QueryCache memoizes derived views (filtered collections) by key. Keys embed
// the store version, so stale entries are never hit; they are evicted oldest
// first once the cache is full.
type QueryCache struct {
	mu       sync.RWMutex
	store    map[string]any
	order    []string
	capacity int
}

func NewQueryCache(capacity int) *QueryCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &QueryCache{
		store:    make(map[string]any),
		capacity: capacity,
	}
}

func (c *QueryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.store[key]
	return val, ok
}

func (c *QueryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store[key]; !ok {
		c.order = append(c.order, key)
	}
	c.store[key] = value
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.store, oldest)
	}
}

func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *QueryCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]any)
	c.order = nil
}
