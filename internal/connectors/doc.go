// Package connectors contains the per-provider adapters that speak the
// wire formats of the supported git-hosting services.
//
// Each subpackage implements driven.ProviderAdapter: it fetches one page
// of repositories for one credential entry and maps the raw payload to
// domain.RepositorySummary. Adapters stay thin on purpose - pagination
// strategy, caching, and failure handling all live in the core engine,
// which treats any adapter error as "this entry failed now".
package connectors
