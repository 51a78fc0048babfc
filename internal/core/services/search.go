package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
	"github.com/custodia-labs/forgecache/internal/logger"
)

// Search filters the user's complete repository lists by a query.
//
// Unlike List, search never settles for a single page: each entry is
// served from a complete snapshot. A warm cache is filtered directly; an
// in-flight build is awaited by polling the build flag; a cold miss is
// populated synchronously. The wait limit is global across all entries
// of one call - when it runs out the whole call fails with
// domain.ErrSearchTimeout rather than returning a misleading partial
// result. Any other single-entry failure only drops that entry's
// matches.
func (s *RepoService) Search(
	ctx context.Context, userID string, provider domain.ProviderType, opts driving.SearchOptions,
) ([]domain.RepositorySummary, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		logger.Debug("search: empty query, returning no results")
		return []domain.RepositorySummary{}, nil
	}

	adapter, err := s.adapterFor(provider)
	if err != nil {
		return nil, err
	}
	entries, err := s.entriesFor(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	wait := opts.Wait
	if wait <= 0 {
		wait = s.cfg.SearchWait
	}
	// One deadline for the whole call, shared by every entry's wait.
	deadline := s.clock.Now().Add(wait)

	logger.Debug("search: user=%s provider=%s query=%q fullmatch=%t entries=%d wait=%s",
		userID, provider, query, opts.FullMatch, len(entries), wait)

	matches := []domain.RepositorySummary{}
	for _, entry := range entries {
		if !entry.HasSecret() {
			logger.Warn("search: skipping entry without secret: %s", entry.Redacted())
			continue
		}

		repos, err := s.completeList(ctx, adapter, entry, deadline)
		if err != nil {
			if errors.Is(err, domain.ErrSearchTimeout) || ctx.Err() != nil {
				return nil, err
			}
			// Entry failure degrades completeness for this domain only.
			logger.Warn("search: entry %s contributes no matches: %v", entry.Redacted(), err)
			continue
		}

		for _, r := range repos {
			if r.MatchesQuery(query, opts.FullMatch) {
				matches = append(matches, r)
			}
		}
	}

	logger.Debug("search: %d matches", len(matches))
	return matches, nil
}

// completeList returns the complete repository list for one entry,
// waiting for or running a full population as needed.
func (s *RepoService) completeList(
	ctx context.Context, adapter driven.ProviderAdapter, entry domain.CredentialEntry, deadline time.Time,
) ([]domain.RepositorySummary, error) {
	key := entry.CacheKey()

	for {
		repos, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("search: cache read failed for %s, treating as miss: %v", key, err)
		}
		if ok {
			logger.Debug("search: cache hit for %s (%d repos)", key, len(repos))
			return repos, nil
		}

		building, err := s.builds.IsBuilding(ctx, key)
		if err != nil {
			logger.Warn("search: build flag read failed for %s: %v", key, err)
		}
		if building {
			if err := s.waitForBuild(ctx, key, deadline); err != nil {
				return nil, err
			}
			// Re-check the cache; a failed build leaves a miss and we
			// fall through to populate it ourselves.
			continue
		}

		ran, err := s.fetchAll(ctx, adapter, entry)
		if err != nil {
			return nil, fmt.Errorf("populate %s: %w", key, err)
		}
		if !ran {
			// Lost the acquire race; loop back and wait on the winner.
			continue
		}

		repos, ok, err = s.cache.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read back %s: %w", key, err)
		}
		if !ok {
			return nil, fmt.Errorf("population of %s left no cache entry", key)
		}
		return repos, nil
	}
}

// waitForBuild polls the build flag until it clears or the call's shared
// deadline elapses. The poll interval is fixed; the flag owner has no
// way to signal completion, so polling is the coordination primitive.
func (s *RepoService) waitForBuild(ctx context.Context, key string, deadline time.Time) error {
	if !s.clock.Now().Before(deadline) {
		return domain.ErrSearchTimeout
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	logger.Debug("search: waiting for in-flight build of %s", key)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			building, err := s.builds.IsBuilding(ctx, key)
			if err != nil {
				logger.Warn("search: build flag poll failed for %s: %v", key, err)
			}
			if !building {
				return nil
			}
			if !s.clock.Now().Before(deadline) {
				return domain.ErrSearchTimeout
			}
		}
	}
}
