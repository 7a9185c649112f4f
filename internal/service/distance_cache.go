package service

import (
	"context"
	"sync"
	"time"

	"github.com/maarten/chauffeur/internal/model"
)

// MemoryDistanceCache is the in-process DistanceCache: a mutex-guarded
// map with TTL checks on read. Expired entries stay in the map until
// Sweep runs or a fresh result overwrites them, so long-running
// processes should sweep periodically.
type MemoryDistanceCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry

	// now is swappable so tests can drive expiry deterministically.
	now func() time.Time
}

type memoryEntry struct {
	res      model.DistanceResult
	storedAt time.Time
}

// NewMemoryDistanceCache creates an in-memory cache with the given TTL.
func NewMemoryDistanceCache(ttl time.Duration) *MemoryDistanceCache {
	return &MemoryDistanceCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the live entry for key. Entries past the TTL are misses.
func (c *MemoryDistanceCache) Get(_ context.Context, key string) (model.DistanceResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return model.DistanceResult{}, false
	}
	return entry.res, true
}

// Put stores a result under key, stamping it with the current time.
func (c *MemoryDistanceCache) Put(_ context.Context, key string, res model.DistanceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{res: res, storedAt: c.now()}
}

// Sweep removes all expired entries and returns how many it dropped.
func (c *MemoryDistanceCache) Sweep(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}
