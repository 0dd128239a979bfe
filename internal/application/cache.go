package application

import (
	"sync"
	"time"

	"goldrates-service/internal/domain"
)

const (
	// DefaultMarketTTL bounds cache age while the market trades and prices move.
	DefaultMarketTTL = 5 * time.Minute
	// DefaultOffHoursTTL bounds cache age outside trading hours; polling the
	// upstream more often than this off-hours burns quota for no new data.
	DefaultOffHoursTTL = 30 * time.Minute
)

// CacheEntry is a snapshot plus the wall-clock instant it was captured.
// Process-local, lost on restart; the persistence store is the durable fallback.
type CacheEntry struct {
	Snapshot   domain.RateSnapshot
	CapturedAt time.Time
}

// Fresh reports whether the entry is younger than ttl at the given instant.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CapturedAt) < ttl
}

// memoryCache holds the latest snapshot per city behind an RWMutex.
// Every request reads it; only the fetch path writes it.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]CacheEntry)}
}

func (c *memoryCache) get(city string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[city]
	return e, ok
}

func (c *memoryCache) set(snap domain.RateSnapshot, capturedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snap.City] = CacheEntry{Snapshot: snap, CapturedAt: capturedAt}
}
