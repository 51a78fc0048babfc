package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
	"github.com/custodia-labs/forgecache/internal/logger"
)

// fetchAll paginates an adapter to exhaustion and writes the complete
// list to the cache, guarded by the single-flight build flag.
//
// The returned ran flag is false when another job already holds the flag
// for this key; the caller then shares that job's eventual result instead
// of duplicating the fetch sequence. When ran is true the flag is
// released on every exit path.
func (s *RepoService) fetchAll(
	ctx context.Context, adapter driven.ProviderAdapter, entry domain.CredentialEntry,
) (ran bool, err error) {
	key := entry.CacheKey()

	acquired, err := s.builds.TryAcquire(ctx, key)
	if err != nil {
		return false, fmt.Errorf("acquire build flag: %w", err)
	}
	if !acquired {
		logger.Debug("full fetch: %s already building, not starting another", key)
		return false, nil
	}
	defer func() {
		if relErr := s.builds.Release(context.WithoutCancel(ctx), key); relErr != nil {
			logger.Error("full fetch: releasing build flag for %s: %v", key, relErr)
		}
	}()

	var all []domain.RepositorySummary
	for page := 1; page <= s.cfg.MaxPages; page++ {
		fetched, err := adapter.ListPage(ctx, entry, page, s.cfg.PageSize)
		if err != nil {
			return true, fmt.Errorf("page %d for %s: %w", page, entry.Redacted(), err)
		}
		all = append(all, fetched.Repos...)

		if len(fetched.Repos) == 0 || len(fetched.Repos) < s.cfg.PageSize {
			break
		}
		if fetched.Total != domain.TotalUnknown && len(all) >= fetched.Total {
			break
		}
		if page == s.cfg.MaxPages {
			logger.Warn("full fetch: page ceiling (%d) hit for %s, caching what we have",
				s.cfg.MaxPages, key)
		}
	}

	if err := s.cache.Set(ctx, key, all, s.cfg.CacheTTL); err != nil {
		return true, fmt.Errorf("cache %d repos for %s: %w", len(all), key, err)
	}

	logger.Info("full fetch: cached %d repos for %s", len(all), key)
	return true, nil
}

// spawnFullFetch runs fetchAll in a detached supervised goroutine.
//
// The job gets a fresh context: it is not cancelled when the triggering
// request returns, and runs to completion, error, or the page ceiling.
// Any failure (including a panic) is logged and suppressed so it never
// surfaces to whoever spawned it; the cache simply stays cold and a
// future call retries.
func (s *RepoService) spawnFullFetch(adapter driven.ProviderAdapter, entry domain.CredentialEntry) {
	jobID := uuid.NewString()[:8]
	logger.Debug("full fetch [%s]: spawning for %s", jobID, entry.Redacted())

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("full fetch [%s]: panic suppressed: %v", jobID, r)
			}
		}()

		ran, err := s.fetchAll(context.Background(), adapter, entry)
		switch {
		case err != nil:
			logger.Warn("full fetch [%s]: failed for %s: %v", jobID, entry.Redacted(), err)
		case !ran:
			logger.Debug("full fetch [%s]: another job owns %s", jobID, entry.CacheKey())
		default:
			logger.Debug("full fetch [%s]: done", jobID)
		}
	}()
}
