// Package mcp provides an MCP (Model Context Protocol) server adapter
// for forgecache. It lets AI assistants browse and search a user's
// repositories across their configured git forges.
package mcp

import "errors"

// ErrMissingBrowser is returned when the repository browser is not provided.
var ErrMissingBrowser = errors.New("mcp: repository browser is required")
