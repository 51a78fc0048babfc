package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
)

// Ensure BuildTracker implements the interface.
var _ driven.BuildTracker = (*BuildTracker)(nil)

// BuildTracker is an in-memory implementation of driven.BuildTracker.
// TryAcquire is a compare-and-set under one mutex, so at most one job
// holds the flag for a key at any instant.
type BuildTracker struct {
	mu       sync.Mutex
	building map[string]bool
}

// NewBuildTracker creates a new in-memory build tracker.
func NewBuildTracker() *BuildTracker {
	return &BuildTracker{
		building: make(map[string]bool),
	}
}

// IsBuilding reports whether a population job currently holds key.
func (t *BuildTracker) IsBuilding(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.building[key], nil
}

// TryAcquire atomically claims key. Returns false if already held.
func (t *BuildTracker) TryAcquire(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.building[key] {
		return false, nil
	}
	t.building[key] = true
	return true, nil
}

// Release clears the flag for key. Idempotent.
func (t *BuildTracker) Release(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.building, key)
	return nil
}
