package driven

import (
	"context"

	"github.com/custodia-labs/forgecache/internal/core/domain"
)

// ProviderAdapter fetches one page of repositories from one git-hosting
// service on behalf of one credential entry.
//
// Adapters are thin wire wrappers: they map raw provider payloads to
// domain.RepositorySummary and surface any failure as a plain error.
// The engine never interprets HTTP status codes; an error means "this
// entry failed now" and nothing more.
type ProviderAdapter interface {
	// Type returns the provider this adapter speaks to.
	Type() domain.ProviderType

	// ListPage fetches page (1-based) of the repositories the entry's
	// user can access, at most limit items. The returned page carries
	// the provider's total count when the API supplies one, otherwise
	// domain.TotalUnknown.
	ListPage(ctx context.Context, entry domain.CredentialEntry, page, limit int) (domain.RepoPage, error)
}
