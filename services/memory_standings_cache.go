package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"nerdfootball/logging"
	"nerdfootball/metrics"
)

// StandingsKey is the cache key of a season leaderboard
func StandingsKey(season int) string {
	return fmt.Sprintf("standings:%d", season)
}

// WeekScoresKey is the cache key of one week's score records
func WeekScoresKey(season, week int) string {
	return fmt.Sprintf("scores:%d:%d", season, week)
}

// SurvivorKey is the cache key of a season's survivor board
func SurvivorKey(season int) string {
	return fmt.Sprintf("survivor:%d", season)
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryStandingsCache holds read projections in memory until they expire or
// a recompute invalidates them. It is never the source of truth.
type MemoryStandingsCache struct {
	mu          sync.RWMutex
	entries     map[string]cacheEntry
	generations map[string]uint64
	ttl     time.Duration
	now     func() time.Time
	logger  *logging.Logger
}

// NewMemoryStandingsCache creates a cache whose entries live for ttl.
// A ttl of zero keeps entries until they are invalidated.
func NewMemoryStandingsCache(ttl time.Duration) *MemoryStandingsCache {
	return &MemoryStandingsCache{
		entries:     make(map[string]cacheEntry),
		generations: make(map[string]uint64),
		ttl:         ttl,
		now:         time.Now,
		logger:      logging.WithPrefix("StandingsCache"),
	}
}

// Get returns the cached value for key if present and fresh
func (c *MemoryStandingsCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// recheck, a concurrent Set may have refreshed it
		if current, still := c.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		ok = false
	}

	metrics.RecordCacheLookup(ok)
	if !ok {
		return nil, false
	}
	return entry.value, true
}

// Generation returns the invalidation count of key. Read it before loading
// from the store and pass it to SetIfCurrent.
func (c *MemoryStandingsCache) Generation(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[key]
}

// Set stores value under key unconditionally
func (c *MemoryStandingsCache) Set(key string, value interface{}) {
	entry := c.newEntry(value)

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// SetIfCurrent stores value only if key has not been invalidated since
// generation was read, so a load that raced a recompute is dropped.
func (c *MemoryStandingsCache) SetIfCurrent(key string, value interface{}, generation uint64) bool {
	entry := c.newEntry(value)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != generation {
		return false
	}
	c.entries[key] = entry
	return true
}

func (c *MemoryStandingsCache) newEntry(value interface{}) cacheEntry {
	entry := cacheEntry{value: value}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	return entry
}

// Invalidate drops the given keys and bumps their generation
func (c *MemoryStandingsCache) Invalidate(keys ...string) {
	if len(keys) == 0 {
		return
	}

	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
		c.generations[key]++
	}
	c.mu.Unlock()

	c.logger.Debugf("Invalidated %s", strings.Join(keys, ", "))
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryStandingsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
