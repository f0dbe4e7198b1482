package cache

import (
	"context"
	"sort"
	"sync"
)

// MemoryCache is a map guarded by a RWMutex.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get retrieves a value from the cache. Returns ("", false) on miss.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	value, ok := c.entries[key]
	c.mu.RUnlock()
	return value, ok
}

// Set stores value under key. Concurrent sets of the same derived value are
// harmless; the last writer wins.
func (c *MemoryCache) Set(_ context.Context, key string, value string) error {
	if c == nil {
		return ErrNilCache
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached values.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached keys in sorted order. Values are not exposed.
func (c *MemoryCache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
