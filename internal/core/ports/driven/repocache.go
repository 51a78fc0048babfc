package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/forgecache/internal/core/domain"
)

// RepoCache stores complete repository-list snapshots with a TTL.
//
// An entry is either the complete list for its key or absent, never a
// partial page. Expiry is lazy: an expired entry is reported as a miss
// on read, no background sweep is required. Once a Set for a key
// returns, any later Get for that key observes it.
type RepoCache interface {
	// Get returns the cached list for key.
	// The boolean is false on a miss or an expired entry.
	Get(ctx context.Context, key string) ([]domain.RepositorySummary, bool, error)

	// Set overwrites the entry for key with a complete list,
	// fresh for ttl from now.
	Set(ctx context.Context, key string, repos []domain.RepositorySummary, ttl time.Duration) error

	// Invalidate removes the entry for key, if present.
	Invalidate(ctx context.Context, key string) error
}
