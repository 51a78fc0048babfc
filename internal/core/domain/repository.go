package domain

import (
	"fmt"
	"strings"
)

// ProviderType identifies a git-hosting service.
type ProviderType string

// Supported provider types.
const (
	ProviderGitHub    ProviderType = "github"
	ProviderGitLab    ProviderType = "gitlab"
	ProviderGitea     ProviderType = "gitea"
	ProviderBitbucket ProviderType = "bitbucket"
	ProviderGitee     ProviderType = "gitee"
)

// IsValid returns true for a known provider type.
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderGitHub, ProviderGitLab, ProviderGitea, ProviderBitbucket, ProviderGitee:
		return true
	default:
		return false
	}
}

// RepositorySummary is one repository as the engine sees it.
// It is an immutable value mapped from raw provider data; the unit
// stored in the cache and returned to callers.
type RepositorySummary struct {
	// ID is the provider-assigned repository identifier.
	ID string `json:"id"`
	// Name is the short repository name, e.g. "forgecache".
	Name string `json:"name"`
	// FullName includes the owner, e.g. "custodia-labs/forgecache".
	FullName string `json:"full_name"`
	// CloneURL is the HTTPS clone URL.
	CloneURL string `json:"clone_url"`
	// Domain is the canonical host the repository lives on.
	Domain string `json:"domain"`
	// Provider is the hosting service type.
	Provider ProviderType `json:"provider"`
	// Private is true for non-public repositories.
	Private bool `json:"private"`
}

// RepoPage is one page of repository results from a provider.
type RepoPage struct {
	// Repos holds the mapped summaries for this page.
	Repos []RepositorySummary
	// Total is the provider-supplied total repository count,
	// or TotalUnknown when the provider gives no such signal.
	Total int
}

// TotalUnknown marks a RepoPage with no provider total-count signal.
const TotalUnknown = -1

// CanonicalDomain normalises a raw domain string to its canonical form.
// The stored domain sometimes arrives with a protocol prefix, credentials,
// path suffix, or mixed case; all of those would fragment the cache key
// for what is logically one host. The rule: strip scheme and userinfo,
// drop everything after the first slash, lowercase, trim trailing dots.
func CanonicalDomain(raw string) string {
	d := strings.TrimSpace(raw)
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.LastIndex(d, "@"); i >= 0 {
		d = d[i+1:]
	}
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimRight(d, ".")
	return strings.ToLower(d)
}

// RepoCacheKey derives the cache key for a user's repository list on one
// domain. Deterministic: two requests for the same logical domain resolve
// to the same key regardless of how the domain was spelled.
func RepoCacheKey(userID, domain string) string {
	return fmt.Sprintf("repos:%s:%s", userID, CanonicalDomain(domain))
}

// MatchesQuery reports whether the repository matches a search query.
// Matching is case-insensitive. With fullMatch the query must equal
// the name or the full name exactly; otherwise a substring match on
// either field suffices.
func (r RepositorySummary) MatchesQuery(query string, fullMatch bool) bool {
	q := strings.ToLower(query)
	name := strings.ToLower(r.Name)
	full := strings.ToLower(r.FullName)
	if fullMatch {
		return name == q || full == q
	}
	return strings.Contains(name, q) || strings.Contains(full, q)
}
