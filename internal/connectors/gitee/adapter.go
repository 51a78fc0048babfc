// Package gitee adapts the Gitee REST API v5 to the
// driven.ProviderAdapter port. The access token travels as a query
// parameter, which is what the Gitee API expects.
package gitee

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
const headerTotalCount = "Total_count"

var _ driven.ProviderAdapter = (*Adapter)(nil)

// Adapter fetches repository pages from Gitee.
type Adapter struct {
	client *http.Client

	// baseURL overrides the API host. Empty means derive from the
	// credential entry's domain.
	baseURL string
}

// NewAdapter creates a Gitee adapter.
func NewAdapter() *Adapter {
	return &Adapter{client: &http.Client{Timeout: DefaultTimeout}}
}

// Type returns the provider this adapter speaks to.
func (a *Adapter) Type() domain.ProviderType { return domain.ProviderGitee }

func (a *Adapter) apiBase(entry domain.CredentialEntry) string {
	if a.baseURL != "" {
		return a.baseURL
	}
	return "https://" + domain.CanonicalDomain(entry.Domain)
}

// repository is the subset of the Gitee repository object the engine needs.
type repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Private  bool   `json:"private"`
}

// ListPage fetches one page of the repositories the token holder can
// access. Gitee reports the total count in the total_count header.
func (a *Adapter) ListPage(
	ctx context.Context, entry domain.CredentialEntry, page, limit int,
) (domain.RepoPage, error) {
	endpoint := fmt.Sprintf("%s/api/v5/user/repos", a.apiBase(entry))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("build request: %w", err)
	}

	q := url.Values{}
	q.Set("access_token", entry.Secret)
	q.Set("sort", "updated")
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

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
			CloneURL: r.HTMLURL,
			Domain:   dom,
			Provider: domain.ProviderGitee,
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
