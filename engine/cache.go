package engine

import (
	"sync"
	"time"

	"github.com/marwan116/supreme-task/result"
)

type cacheEntry struct {
	result  *result.Result
	expires time.Time
}

// cache maps cache keys to the results of completed task runs.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry)}
}

// get returns the entry for key unless it expired before now.
func (c *cache) get(key string, now time.Time) (*result.Result, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		c.evict(key, now)
		return nil, false
	}
	return e.result, true
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// evict deletes key if its entry is still expired at now. A result put
// after the caller's read is kept.
func (c *cache) evict(key string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.expired(now) {
		delete(c.entries, key)
	}
}

// put stores r under key. A zero ttl never expires.
func (c *cache) put(key string, r *result.Result, now time.Time, ttl time.Duration) {
	e := cacheEntry{result: r}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

func (c *cache) clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}
