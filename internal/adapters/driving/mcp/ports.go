package mcp

import (
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// Browser provides repository list and search capabilities.
	Browser driving.RepositoryBrowser

	// UserID scopes every tool call to one configured user. Empty
	// means the default local user.
	UserID string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Browser == nil {
		return ErrMissingBrowser
	}
	return nil
}
