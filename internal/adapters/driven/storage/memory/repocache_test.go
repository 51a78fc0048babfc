package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/forgecache/internal/core/domain"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleRepos(n int) []domain.RepositorySummary {
	repos := make([]domain.RepositorySummary, n)
	for i := range repos {
		repos[i] = domain.RepositorySummary{
			ID:       string(rune('a' + i)),
			Name:     "repo",
			Provider: domain.ProviderGitHub,
		}
	}
	return repos
}

func TestRepoCache_GetMiss(t *testing.T) {
	cache := NewRepoCache()
	ctx := context.Background()

	repos, ok, err := cache.Get(ctx, "repos:u1:github.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, repos)
}

func TestRepoCache_SetThenGet(t *testing.T) {
	cache := NewRepoCache()
	ctx := context.Background()

	want := sampleRepos(3)
	require.NoError(t, cache.Set(ctx, "k", want, time.Minute))

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRepoCache_SetOverwrites(t *testing.T) {
	cache := NewRepoCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", sampleRepos(5), time.Minute))
	require.NoError(t, cache.Set(ctx, "k", sampleRepos(2), time.Minute))

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestRepoCache_TTLExpiry(t *testing.T) {
	cache := NewRepoCache()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache.SetClock(clock)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", sampleRepos(1), time.Minute))

	// Just inside the TTL window: still a hit.
	clock.Advance(59 * time.Second)
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// Past the TTL: lazy expiry reports a miss.
	clock.Advance(2 * time.Second)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// The stale entry was dropped, not just hidden.
	cache.mu.RLock()
	_, still := cache.entries["k"]
	cache.mu.RUnlock()
	assert.False(t, still)
}

func TestRepoCache_Invalidate(t *testing.T) {
	cache := NewRepoCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", sampleRepos(1), time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "k"))

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Invalidating an absent key is not an error.
	require.NoError(t, cache.Invalidate(ctx, "missing"))
}

func TestRepoCache_ConcurrentAccess(t *testing.T) {
	cache := NewRepoCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Set(ctx, "k", sampleRepos(2), time.Minute)
			_, _, _ = cache.Get(ctx, "k")
			_ = cache.Invalidate(ctx, "other")
		}()
	}
	wg.Wait()
	// Test passes if no race conditions
}
