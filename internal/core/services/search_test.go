package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
)

func searchOpts(query string, fullMatch bool) driving.SearchOptions {
	return driving.SearchOptions{Query: query, FullMatch: fullMatch}
}

func TestSearch_EmptyQueryReturnsNoResults(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	svc, _, _ := newTestService(adapter, giteaEntry("gitea.local"))

	got, err := svc.Search(context.Background(), "u1", domain.ProviderGitea, searchOpts("  ", false))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, adapter.callCount())
}

func TestSearch_NoCredentials(t *testing.T) {
	svc, _, _ := newTestService(newScriptedAdapter(domain.ProviderGitea))

	_, err := svc.Search(context.Background(), "u1", domain.ProviderGitea, searchOpts("foo", false))
	require.ErrorIs(t, err, domain.ErrNoCredentials)
}

func TestSearch_WarmCacheFilters(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	svc, cache, _ := newTestService(adapter, giteaEntry("gitea.local"))
	ctx := context.Background()

	snapshot := []domain.RepositorySummary{
		{Name: "foobar", FullName: "acme/foobar", Domain: "gitea.local"},
		{Name: "baz", FullName: "acme/baz", Domain: "gitea.local"},
		{Name: "Foo-widget", FullName: "acme/Foo-widget", Domain: "gitea.local"},
	}
	key := domain.RepoCacheKey("u1", "gitea.local")
	require.NoError(t, cache.Set(ctx, key, snapshot, time.Minute))

	// Substring: matches foobar and Foo-widget, not baz.
	got, err := svc.Search(ctx, "u1", domain.ProviderGitea, searchOpts("foo", false))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "foobar", got[0].Name)
	assert.Equal(t, "Foo-widget", got[1].Name)

	// Full match: only the exact name.
	got, err = svc.Search(ctx, "u1", domain.ProviderGitea, searchOpts("foobar", true))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "foobar", got[0].Name)

	assert.Zero(t, adapter.callCount(), "warm cache never reaches the network")
}

func TestSearch_ColdMissPopulatesSynchronously(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	adapter.perDomain["gitea.local"] = makeRepos("gitea.local", 130)
	svc, cache, _ := newTestService(adapter, giteaEntry("gitea.local"))
	ctx := context.Background()

	// repo-129 lives on the second page; search must see the full list.
	got, err := svc.Search(ctx, "u1", domain.ProviderGitea, searchOpts("repo-129", false))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "repo-129", got[0].Name)
	assert.Equal(t, 2, adapter.callCount())

	// The synchronous population also warmed the cache.
	cached, ok, err := cache.Get(ctx, domain.RepoCacheKey("u1", "gitea.local"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, cached, 130)

	// Second search is free.
	_, err = svc.Search(ctx, "u1", domain.ProviderGitea, searchOpts("repo-001", false))
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.callCount())
}

func TestSearch_BoundedWaitTimesOut(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	svc, _, tracker := newTestService(adapter, giteaEntry("gitea.local"))
	ctx := context.Background()

	// A build flag that never clears.
	key := domain.RepoCacheKey("u1", "gitea.local")
	ok, err := tracker.TryAcquire(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	start := time.Now()
	_, err = svc.Search(ctx, "u1", domain.ProviderGitea, searchOpts("foo", false))
	elapsed := time.Since(start)

	require.ErrorIs(t, err, domain.ErrSearchTimeout)
	// Configured wait is 60ms, poll interval 5ms: never hangs.
	assert.Less(t, elapsed, time.Second)
	assert.GreaterOrEqual(t, elapsed, 55*time.Millisecond)
	assert.Zero(t, adapter.callCount())
}

func TestSearch_PerCallWaitOverride(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	svc, _, tracker := newTestService(adapter, giteaEntry("gitea.local"))
	ctx := context.Background()

	key := domain.RepoCacheKey("u1", "gitea.local")
	ok, err := tracker.TryAcquire(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	opts := searchOpts("foo", false)
	opts.Wait = 15 * time.Millisecond

	start := time.Now()
	_, err = svc.Search(ctx, "u1", domain.ProviderGitea, opts)
	require.ErrorIs(t, err, domain.ErrSearchTimeout)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestSearch_WaitsOutInFlightBuildThenHits(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	svc, cache, tracker := newTestService(adapter, giteaEntry("gitea.local"))
	ctx := context.Background()

	key := domain.RepoCacheKey("u1", "gitea.local")
	ok, err := tracker.TryAcquire(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate the in-flight job finishing: cache write, then release.
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = cache.Set(ctx, key, []domain.RepositorySummary{
			{Name: "foobar", FullName: "acme/foobar", Domain: "gitea.local"},
		}, time.Minute)
		_ = tracker.Release(ctx, key)
	}()

	opts := searchOpts("foo", false)
	opts.Wait = 500 * time.Millisecond

	got, err := svc.Search(ctx, "u1", domain.ProviderGitea, opts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "foobar", got[0].Name)
	assert.Zero(t, adapter.callCount(), "the waiter shares the builder's result")
}

func TestSearch_EntryFailureContributesZeroMatches(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	adapter.perDomain["good.local"] = []domain.RepositorySummary{
		{Name: "foobar", FullName: "acme/foobar", Domain: "good.local"},
	}
	adapter.errDomains["bad.local"] = errors.New("upstream down")

	svc, _, tracker := newTestService(adapter, giteaEntry("bad.local"), giteaEntry("good.local"))
	ctx := context.Background()

	got, err := svc.Search(ctx, "u1", domain.ProviderGitea, searchOpts("foo", false))
	require.NoError(t, err, "a single entry's failure degrades, never aborts")
	require.Len(t, got, 1)
	assert.Equal(t, "good.local", got[0].Domain)

	// The failed entry's flag was released despite the error.
	building, err := tracker.IsBuilding(ctx, domain.RepoCacheKey("u1", "bad.local"))
	require.NoError(t, err)
	assert.False(t, building)
}

func TestSearch_TimeoutIsGlobalAcrossEntries(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	svc, cache, tracker := newTestService(adapter,
		giteaEntry("stuck.local"), giteaEntry("warm.local"))
	ctx := context.Background()

	// Second entry is warm, but the first never finishes building: the
	// whole call fails rather than returning a partial result.
	require.NoError(t, cache.Set(ctx, domain.RepoCacheKey("u1", "warm.local"),
		makeRepos("warm.local", 2), time.Minute))

	ok, err := tracker.TryAcquire(ctx, domain.RepoCacheKey("u1", "stuck.local"))
	require.NoError(t, err)
	require.True(t, ok)

	got, err := svc.Search(ctx, "u1", domain.ProviderGitea, searchOpts("repo", false))
	require.ErrorIs(t, err, domain.ErrSearchTimeout)
	assert.Nil(t, got)
}

func TestSearch_ContextCancellationStopsWaiting(t *testing.T) {
	adapter := newScriptedAdapter(domain.ProviderGitea)
	svc, _, tracker := newTestService(adapter, giteaEntry("gitea.local"))

	key := domain.RepoCacheKey("u1", "gitea.local")
	ok, err := tracker.TryAcquire(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	opts := searchOpts("foo", false)
	opts.Wait = time.Minute

	_, err = svc.Search(ctx, "u1", domain.ProviderGitea, opts)
	require.ErrorIs(t, err, context.Canceled)
}
