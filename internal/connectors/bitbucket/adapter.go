// Package bitbucket adapts the Bitbucket Cloud REST API 2.0 to the
// driven.ProviderAdapter port. Authentication uses the account
// username and an app password via HTTP basic auth.
package bitbucket

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

var _ driven.ProviderAdapter = (*Adapter)(nil)

// Adapter fetches repository pages from Bitbucket Cloud.
type Adapter struct {
	client *http.Client

	// baseURL overrides the API host. Empty means derive from the
	// credential entry's domain.
	baseURL string
}

// NewAdapter creates a Bitbucket adapter.
func NewAdapter() *Adapter {
	return &Adapter{client: &http.Client{Timeout: DefaultTimeout}}
}

// Type returns the provider this adapter speaks to.
func (a *Adapter) Type() domain.ProviderType { return domain.ProviderBitbucket }

func (a *Adapter) apiBase(entry domain.CredentialEntry) string {
	if a.baseURL != "" {
		return a.baseURL
	}
	dom := domain.CanonicalDomain(entry.Domain)
	if dom == "bitbucket.org" {
		return "https://api.bitbucket.org"
	}
	return "https://" + dom
}

// listResponse is the Bitbucket paginated envelope.
type listResponse struct {
	Size   int          `json:"size"`
	Values []repository `json:"values"`
}

type repository struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	IsPrivate bool   `json:"is_private"`
	Links     struct {
		Clone []struct {
			Name string `json:"name"`
			Href string `json:"href"`
		} `json:"clone"`
	} `json:"links"`
}

// cloneURL picks the HTTPS clone link from the repository's link set.
func (r repository) cloneURL() string {
	for _, link := range r.Links.Clone {
		if link.Name == "https" {
			return link.Href
		}
	}
	if len(r.Links.Clone) > 0 {
		return r.Links.Clone[0].Href
	}
	return ""
}

// ListPage fetches one page of the repositories the account is a
// member of. Bitbucket reports the total count in the envelope's
// size field.
func (a *Adapter) ListPage(
	ctx context.Context, entry domain.CredentialEntry, page, limit int,
) (domain.RepoPage, error) {
	endpoint := fmt.Sprintf("%s/2.0/repositories", a.apiBase(entry))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("build request: %w", err)
	}

	q := url.Values{}
	q.Set("role", "member")
	q.Set("page", strconv.Itoa(page))
	q.Set("pagelen", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()
	req.SetBasicAuth(entry.Username, entry.Secret)

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.RepoPage{}, fmt.Errorf("list repos page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.RepoPage{}, fmt.Errorf("list repos page %d: unexpected status %d", page, resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.RepoPage{}, fmt.Errorf("decode repos page %d: %w", page, err)
	}

	dom := domain.CanonicalDomain(entry.Domain)
	mapped := make([]domain.RepositorySummary, 0, len(body.Values))
	for _, r := range body.Values {
		mapped = append(mapped, domain.RepositorySummary{
			ID:       r.UUID,
			Name:     r.Name,
			FullName: r.FullName,
			CloneURL: r.cloneURL(),
			Domain:   dom,
			Provider: domain.ProviderBitbucket,
			Private:  r.IsPrivate,
		})
	}

	total := domain.TotalUnknown
	if body.Size > 0 {
		total = body.Size
	}

	return domain.RepoPage{Repos: mapped, Total: total}, nil
}
