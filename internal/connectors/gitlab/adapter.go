// Package gitlab adapts the GitLab REST API v4 (gitlab.com and
// self-hosted instances) to the driven.ProviderAdapter port.
package gitlab

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

// headerTotal carries the total project count on list responses.
const headerTotal = "X-Total"

var _ driven.ProviderAdapter = (*Adapter)(nil)

// Adapter fetches repository pages from a GitLab instance.
type Adapter struct {
	client *http.Client

	// baseURL overrides the API host. Empty means derive from the
	// credential entry's domain.
	baseURL string
}

// NewAdapter creates a GitLab adapter.
func NewAdapter() *Adapter {
	return &Adapter{client: &http.Client{Timeout: DefaultTimeout}}
}

// Type returns the provider this adapter speaks to.
func (a *Adapter) Type() domain.ProviderType { return domain.ProviderGitLab }

func (a *Adapter) apiBase(entry domain.CredentialEntry) string {
	if a.baseURL != "" {
		return a.baseURL
	}
	return "https://" + domain.CanonicalDomain(entry.Domain)
}

// project is the subset of the GitLab project object the engine needs.
type project struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
	Visibility        string `json:"visibility"`
}

// ListPage fetches one page of the projects the token holder is a
// member of. GitLab reports the total count in the X-Total header.
func (a *Adapter) ListPage(
	ctx context.Context, entry domain.CredentialEntry, page, limit int,
) (domain.RepoPage, error) {
	endpoint := fmt.Sprintf("%s/api/v4/projects", a.apiBase(entry))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("build request: %w", err)
	}

	q := url.Values{}
	q.Set("membership", "true")
	q.Set("order_by", "last_activity_at")
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("PRIVATE-TOKEN", entry.Secret)

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("list projects page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.RepoPage{}, fmt.Errorf("list projects page %d: unexpected status %d", page, resp.StatusCode)
	}

	var projects []project
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		return domain.RepoPage{}, fmt.Errorf("decode projects page %d: %w", page, err)
	}

	dom := domain.CanonicalDomain(entry.Domain)
	mapped := make([]domain.RepositorySummary, 0, len(projects))
	for _, p := range projects {
		mapped = append(mapped, domain.RepositorySummary{
			ID:       strconv.FormatInt(p.ID, 10),
			Name:     p.Name,
			FullName: p.PathWithNamespace,
			CloneURL: p.HTTPURLToRepo,
			Domain:   dom,
			Provider: domain.ProviderGitLab,
			Private:  p.Visibility != "public",
		})
	}

	total := domain.TotalUnknown
	if v := resp.Header.Get(headerTotal); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			total = n
		}
	}

	return domain.RepoPage{Repos: mapped, Total: total}, nil
}
