package pipeline

import (
	"sync"

	"github.com/google/uuid"
)

// Cache keeps completed search results in memory so the API can serve
// follow-up requests (dedupe comparison, re-forwarding) without rerunning
// the search. Results live until process exit.
type Cache struct {
	mu      sync.RWMutex
	results map[uuid.UUID]*Result
	latest  uuid.UUID
}

// NewCache creates an empty result cache.
func NewCache() *Cache {
	return &Cache{results: make(map[uuid.UUID]*Result)}
}

// Put stores a result and marks it as the latest.
func (c *Cache) Put(r *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[r.ID] = r
	c.latest = r.ID
}

// Get returns a result by id.
func (c *Cache) Get(id uuid.UUID) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[id]
	return r, ok
}

// Latest returns the most recently stored result.
func (c *Cache) Latest() (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[c.latest]
	return r, ok
}
