// Package gitea adapts the Gitea REST API v1 to the
// driven.ProviderAdapter port. Forgejo instances expose the same API
// and work unchanged.
package gitea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// headerTotalCount carries the total repository count on list responses.
const headerTotalCount = "X-Total-Count"

var _ driven.ProviderAdapter = (*Adapter)(nil)

// Adapter fetches repository pages from a Gitea instance.
type Adapter struct {
	client *http.Client

	// baseURL overrides the API host. Empty means derive from the
	// credential entry's domain.
	baseURL string
}

// NewAdapter creates a Gitea adapter.
func NewAdapter() *Adapter {
	return &Adapter{client: &http.Client{Timeout: DefaultTimeout}}
}

// Type returns the provider this adapter speaks to.
func (a *Adapter) Type() domain.ProviderType { return domain.ProviderGitea }

func (a *Adapter) apiBase(entry domain.CredentialEntry) string {
	if a.baseURL != "" {
		return a.baseURL
	}
	return "https://" + domain.CanonicalDomain(entry.Domain)
}

// repository is the subset of the Gitea repository object the engine needs.
type repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Private  bool   `json:"private"`
}

// ListPage fetches one page of the repositories the token holder can
// access. Gitea reports the total count in the X-Total-Count header.
func (a *Adapter) ListPage(
	ctx context.Context, entry domain.CredentialEntry, page, limit int,
) (domain.RepoPage, error) {
	endpoint := fmt.Sprintf("%s/api/v1/user/repos", a.apiBase(entry))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("build request: %w", err)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "token "+entry.Secret)

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("list repos page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.RepoPage{}, fmt.Errorf("list repos page %d: unexpected status %d", page, resp.StatusCode)
	}

	var repos []repository
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return domain.RepoPage{}, fmt.Errorf("decode repos page %d: %w", page, err)
	}

	dom := domain.CanonicalDomain(entry.Domain)
	mapped := make([]domain.RepositorySummary, 0, len(repos))
	for _, r := range repos {
		mapped = append(mapped, domain.RepositorySummary{
			ID:       strconv.FormatInt(r.ID, 10),
			Name:     r.Name,
			FullName: r.FullName,
			CloneURL: r.CloneURL,
			Domain:   dom,
			Provider: domain.ProviderGitea,
			Private:  r.Private,
		})
	}

	total := domain.TotalUnknown
	if v := resp.Header.Get(headerTotalCount); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			total = n
		}
	}

	return domain.RepoPage{Repos: mapped, Total: total}, nil
}
