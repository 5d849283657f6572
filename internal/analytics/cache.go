package analytics

import (
	"sync"
	"time"
)

// cacheEntry holds cached stats and metadata
type cacheEntry struct {
	stats       []Stats
	lastRefresh time.Time
}

// statsCache provides thread-safe caching for analytics statistics
type statsCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry // key: base URL
	ttl     time.Duration          // cache time-to-live
}

// newStatsCache creates a new statistics cache with the specified TTL
func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// get retrieves cached stats if available and fresh
func (c *statsCache) get(baseURL string) ([]Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[baseURL]
	if !exists || time.Since(entry.lastRefresh) > c.ttl {
		return nil, false
	}

	return entry.stats, true
}

// set stores stats in cache
func (c *statsCache) set(baseURL string, stats []Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[baseURL] = &cacheEntry{
		stats:       stats,
		lastRefresh: time.Now(),
	}
}

// invalidate clears cached data for one backend
func (c *statsCache) invalidate(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, baseURL)
}

// invalidateAll clears all cached data
func (c *statsCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
}
