// Package github adapts the GitHub REST API (github.com and GitHub
// Enterprise) to the driven.ProviderAdapter port.
package github

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Adapter implements the interface.
var _ driven.ProviderAdapter = (*Adapter)(nil)

// Adapter fetches repository pages from GitHub.
// One rate limiter is shared across all entries: the limit that matters
// is per process against api.github.com, not per credential.
type Adapter struct {
	limiter *RateLimiter
}

// NewAdapter creates a GitHub adapter.
func NewAdapter() *Adapter {
	return &Adapter{limiter: NewRateLimiter()}
}

// Type returns the provider this adapter speaks to.
func (a *Adapter) Type() domain.ProviderType { return domain.ProviderGitHub }

// clientFor builds a go-github client for one credential entry.
// Domains other than github.com are treated as GitHub Enterprise hosts.
func (a *Adapter) clientFor(ctx context.Context, entry domain.CredentialEntry) (*gh.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: entry.Secret})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	client := gh.NewClient(tc)
	dom := domain.CanonicalDomain(entry.Domain)
	if dom != "" && dom != "github.com" {
		base := fmt.Sprintf("https://%s/api/v3/", dom)
		upload := fmt.Sprintf("https://%s/api/uploads/", dom)
		var err error
		client, err = client.WithEnterpriseURLs(base, upload)
		if err != nil {
			return nil, fmt.Errorf("enterprise URLs for %s: %w", dom, err)
		}
	}
	return client, nil
}

// ListPage fetches one page of the repositories the authenticated user
// can access: owned, collaborator, and organization member repos.
// GitHub supplies no total count; the engine stops on a short page.
func (a *Adapter) ListPage(
	ctx context.Context, entry domain.CredentialEntry, page, limit int,
) (domain.RepoPage, error) {
	client, err := a.clientFor(ctx, entry)
	if err != nil {
		return domain.RepoPage{}, err
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return domain.RepoPage{}, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Visibility:  "all",
		Affiliation: "owner,collaborator,organization_member",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{Page: page, PerPage: limit},
	}

	repos, resp, err := client.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("list repos page %d: %w", page, err)
	}
	if resp != nil && resp.Response != nil {
		a.limiter.UpdateFromResponse(resp.Response)
	}

	dom := domain.CanonicalDomain(entry.Domain)
	mapped := make([]domain.RepositorySummary, 0, len(repos))
	for _, r := range repos {
		mapped = append(mapped, mapRepo(r, dom))
	}
	return domain.RepoPage{Repos: mapped, Total: domain.TotalUnknown}, nil
}

// mapRepo converts a go-github repository to the domain summary.
func mapRepo(r *gh.Repository, dom string) domain.RepositorySummary {
	return domain.RepositorySummary{
		ID:       strconv.FormatInt(r.GetID(), 10),
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		CloneURL: r.GetCloneURL(),
		Domain:   dom,
		Provider: domain.ProviderGitHub,
		Private:  r.GetPrivate(),
	}
}
