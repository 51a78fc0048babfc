// Package memory provides in-memory implementations of the storage
// ports: a TTL repository cache and a single-flight build tracker.
// State is process-local; read-after-write visibility holds for all
// goroutines sharing the instance.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
)

// Ensure RepoCache implements the interface.
var _ driven.RepoCache = (*RepoCache)(nil)

// cacheEntry is one complete snapshot with its expiry instant.
type cacheEntry struct {
	repos     []domain.RepositorySummary
	expiresAt time.Time
}

// RepoCache is an in-memory implementation of driven.RepoCache.
// Expiry is lazy: entries are dropped when a read finds them stale.
type RepoCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	clock   driven.Clock
}

// NewRepoCache creates a new in-memory repository cache.
func NewRepoCache() *RepoCache {
	return &RepoCache{
		entries: make(map[string]cacheEntry),
		clock:   driven.SystemClock{},
	}
}

// SetClock replaces the time source. Useful for testing expiry.
func (c *RepoCache) SetClock(clock driven.Clock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
}

// Get returns the cached list for key, or a miss for absent or expired
// entries.
func (c *RepoCache) Get(_ context.Context, key string) ([]domain.RepositorySummary, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	now := c.clock.Now()
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !now.Before(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, still := c.entries[key]; still && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.repos, true, nil
}

// Set overwrites the entry for key, fresh for ttl from now.
func (c *RepoCache) Set(_ context.Context, key string, repos []domain.RepositorySummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		repos:     repos,
		expiresAt: c.clock.Now().Add(ttl),
	}
	return nil
}

// Invalidate removes the entry for key.
func (c *RepoCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
