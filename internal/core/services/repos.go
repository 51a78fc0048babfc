package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
	"github.com/custodia-labs/forgecache/internal/logger"
)

// Ensure RepoService implements the interface.
var _ driving.RepositoryBrowser = (*RepoService)(nil)

// RepoService aggregates a user's repositories across all their
// credentialed forge domains, backed by a TTL snapshot cache and a
// single-flight build tracker.
type RepoService struct {
	cache  driven.RepoCache
	builds driven.BuildTracker
	creds  driven.CredentialSource
	clock  driven.Clock
	cfg    domain.EngineConfig

	mu       sync.RWMutex
	adapters map[domain.ProviderType]driven.ProviderAdapter

	jobs sync.WaitGroup
}

// NewRepoService creates the engine with its collaborators.
// Provider adapters are registered separately via RegisterAdapter.
func NewRepoService(
	cache driven.RepoCache,
	builds driven.BuildTracker,
	creds driven.CredentialSource,
	cfg domain.EngineConfig,
) *RepoService {
	return &RepoService{
		cache:    cache,
		builds:   builds,
		creds:    creds,
		clock:    driven.SystemClock{},
		cfg:      cfg.Normalised(),
		adapters: make(map[domain.ProviderType]driven.ProviderAdapter),
	}
}

// SetClock replaces the time source. Useful for testing.
func (s *RepoService) SetClock(clock driven.Clock) {
	s.clock = clock
}

// RegisterAdapter makes a provider adapter available to the engine.
// Registering a second adapter for the same type replaces the first.
func (s *RepoService) RegisterAdapter(adapter driven.ProviderAdapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapters[adapter.Type()] = adapter
}

// adapterFor returns the adapter for a provider type.
func (s *RepoService) adapterFor(provider domain.ProviderType) (driven.ProviderAdapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adapter, ok := s.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
	}
	return adapter, nil
}

// entriesFor loads the user's credential entries for a provider.
// Returns domain.ErrNoCredentials when none exist; no I/O is attempted.
func (s *RepoService) entriesFor(
	ctx context.Context, userID string, provider domain.ProviderType,
) ([]domain.CredentialEntry, error) {
	entries, err := s.creds.EntriesFor(ctx, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoCredentials, provider)
	}
	return entries, nil
}

// List returns one page of the user's repositories for a provider,
// concatenated across credential entries in entry order.
//
// Per entry: a warm cache serves a slice of the snapshot with no network
// call. On a miss, exactly one page is fetched; a short first page is the
// whole list and is cached immediately, a full page triggers a detached
// background full population. An entry whose fetch fails is skipped and
// never fails the whole call.
func (s *RepoService) List(
	ctx context.Context, userID string, provider domain.ProviderType, page, limit int,
) ([]domain.RepositorySummary, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.cfg.PageSize
	}

	adapter, err := s.adapterFor(provider)
	if err != nil {
		return nil, err
	}
	entries, err := s.entriesFor(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	logger.Debug("list: user=%s provider=%s page=%d limit=%d entries=%d",
		userID, provider, page, limit, len(entries))

	var result []domain.RepositorySummary
	for _, entry := range entries {
		if !entry.HasSecret() {
			logger.Warn("list: skipping entry without secret: %s", entry.Redacted())
			continue
		}
		key := entry.CacheKey()

		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("list: cache read failed for %s, treating as miss: %v", key, err)
		}
		if ok {
			logger.Debug("list: cache hit for %s (%d repos)", key, len(cached))
			result = append(result, pageSlice(cached, page, limit)...)
			continue
		}

		fetched, err := adapter.ListPage(ctx, entry, page, limit)
		if err != nil {
			logger.Warn("list: entry %s failed, skipping: %v", entry.Redacted(), err)
			continue
		}

		if len(fetched.Repos) < limit && page == 1 {
			// The single short first page is the complete list.
			if err := s.cache.Set(ctx, key, fetched.Repos, s.cfg.CacheTTL); err != nil {
				logger.Warn("list: cache write failed for %s: %v", key, err)
			}
		} else {
			// More pages exist upstream (or we landed mid-list); warm the
			// cache off the request path.
			s.spawnFullFetch(adapter, entry)
		}

		result = append(result, fetched.Repos...)
	}

	return result, nil
}

// Refresh drops the cached lists for all of the user's entries of a
// provider so the next call repopulates them.
func (s *RepoService) Refresh(
	ctx context.Context, userID string, provider domain.ProviderType,
) error {
	entries, err := s.entriesFor(ctx, userID, provider)
	if err != nil {
		return err
	}

	var errs []error
	for _, entry := range entries {
		if err := s.cache.Invalidate(ctx, entry.CacheKey()); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", entry.CacheKey(), err))
		}
	}
	return errors.Join(errs...)
}

// WaitForBackgroundJobs blocks until every spawned full-population job
// has settled. Called by process-bound consumers (the CLI) before exit
// so a warm cache write is not cut off mid-flight.
func (s *RepoService) WaitForBackgroundJobs() {
	s.jobs.Wait()
}

// pageSlice returns the 1-based page of a cached snapshot.
func pageSlice(repos []domain.RepositorySummary, page, limit int) []domain.RepositorySummary {
	start := (page - 1) * limit
	if start >= len(repos) {
		return nil
	}
	end := start + limit
	if end > len(repos) {
		end = len(repos)
	}
	return repos[start:end]
}
