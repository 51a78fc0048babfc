package driven

import "context"

// BuildTracker marks cache keys whose full population is in progress.
//
// At most one job may hold the flag for a key at any instant. Acquisition
// is an atomic compare-and-set: a separate IsBuilding-then-set sequence
// would be a check-then-act race under parallel callers, so the contract
// is TryAcquire paired with a deferred Release on every exit path.
type BuildTracker interface {
	// IsBuilding reports whether a population job currently holds key.
	// Used by search callers polling for an in-flight build to finish.
	IsBuilding(ctx context.Context, key string) (bool, error)

	// TryAcquire atomically claims key for a population job.
	// Returns false if another job already holds it.
	TryAcquire(ctx context.Context, key string) (bool, error)

	// Release clears the flag for key. Idempotent.
	Release(ctx context.Context, key string) error
}
