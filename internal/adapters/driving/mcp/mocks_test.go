package mcp

import (
	"context"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
)

// mockBrowser is a mock implementation of driving.RepositoryBrowser.
type mockBrowser struct {
	repos []domain.RepositorySummary
	err   error

	lastUserID   string
	lastProvider domain.ProviderType
	lastPage     int
	lastLimit    int
	lastOpts     driving.SearchOptions
}

func (m *mockBrowser) List(
	_ context.Context,
	userID string,
	provider domain.ProviderType,
	page, limit int,
) ([]domain.RepositorySummary, error) {
	m.lastUserID = userID
	m.lastProvider = provider
	m.lastPage = page
	m.lastLimit = limit
	return m.repos, m.err
}

func (m *mockBrowser) Search(
	_ context.Context,
	userID string,
	provider domain.ProviderType,
	opts driving.SearchOptions,
) ([]domain.RepositorySummary, error) {
	m.lastUserID = userID
	m.lastProvider = provider
	m.lastOpts = opts
	return m.repos, m.err
}

func (m *mockBrowser) Refresh(
	_ context.Context,
	userID string,
	provider domain.ProviderType,
) error {
	m.lastUserID = userID
	m.lastProvider = provider
	return m.err
}
