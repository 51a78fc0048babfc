package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/forgecache/internal/core/domain"
)

// SearchOptions controls a repository search call.
type SearchOptions struct {
	// Query is the search text. Matching is case-insensitive.
	Query string
	// FullMatch selects exact-equals on name or full name instead of
	// substring containment.
	FullMatch bool
	// Wait overrides the configured global wait limit for in-flight
	// cache builds. Zero means use the engine default.
	Wait time.Duration
}

// RepositoryBrowser exposes the cached list and search operations over a
// user's repositories across all their credentialed forge domains.
type RepositoryBrowser interface {
	// List returns one page of the user's repositories for a provider,
	// concatenated across credential entries in entry order. A failing
	// entry is skipped, never failing the whole call.
	List(ctx context.Context, userID string, provider domain.ProviderType, page, limit int) ([]domain.RepositorySummary, error)

	// Search filters the user's complete repository lists by a query,
	// populating cold caches synchronously and waiting (bounded) for
	// in-flight builds. Returns domain.ErrSearchTimeout when the wait
	// limit elapses.
	Search(ctx context.Context, userID string, provider domain.ProviderType, opts SearchOptions) ([]domain.RepositorySummary, error)

	// Refresh drops the cached lists for all of the user's entries of a
	// provider so the next call repopulates them.
	Refresh(ctx context.Context, userID string, provider domain.ProviderType) error
}
