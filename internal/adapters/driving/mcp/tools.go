package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
)

// ListInput is the input schema for the list_repositories tool.
type ListInput struct {
	Provider string `json:"provider" jsonschema:"the git forge provider (github, gitlab, gitea, bitbucket, gitee)"`
	Page     int    `json:"page,omitempty" jsonschema:"page number starting at 1 (default 1)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"repositories per page (default from config)"`
}

// SearchInput is the input schema for the search_repositories tool.
type SearchInput struct {
	Provider  string `json:"provider" jsonschema:"the git forge provider (github, gitlab, gitea, bitbucket, gitee)"`
	Query     string `json:"query" jsonschema:"the text to match repository names against"`
	FullMatch bool   `json:"full_match,omitempty" jsonschema:"require an exact name match instead of substring containment"`
}

// RepoOutput represents a single repository in tool output.
type RepoOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Domain   string `json:"domain"`
	Private  bool   `json:"private"`
}

// ReposOutput is the output schema for both repository tools.
type ReposOutput struct {
	Repos []RepoOutput `json:"repos"`
	Count int          `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_repositories",
		Description: "List the user's repositories on a git forge provider, one page at a time",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_repositories",
		Description: "Search the user's repositories on a git forge provider by name",
	}, s.handleSearch)
}

func parseProvider(raw string) (domain.ProviderType, error) {
	p := domain.ProviderType(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: unknown provider %q", domain.ErrUnsupportedProvider, raw)
	}
	return p, nil
}

func mapRepos(repos []domain.RepositorySummary) ReposOutput {
	out := ReposOutput{
		Repos: make([]RepoOutput, len(repos)),
		Count: len(repos),
	}
	for i := range repos {
		out.Repos[i] = RepoOutput{
			ID:       repos[i].ID,
			Name:     repos[i].Name,
			FullName: repos[i].FullName,
			CloneURL: repos[i].CloneURL,
			Domain:   repos[i].Domain,
			Private:  repos[i].Private,
		}
	}
	return out
}

// handleList handles the list_repositories tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ReposOutput, error) {
	provider, err := parseProvider(input.Provider)
	if err != nil {
		return nil, ReposOutput{}, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	repos, err := s.ports.Browser.List(ctx, s.ports.UserID, provider, page, input.Limit)
	if err != nil {
		return nil, ReposOutput{}, err
	}

	return nil, mapRepos(repos), nil
}

// handleSearch handles the search_repositories tool invocation.
// The engine's configured wait limit bounds how long the call blocks
// on an in-flight cache build; a stuck build surfaces as an error
// rather than hanging the assistant.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, ReposOutput, error) {
	provider, err := parseProvider(input.Provider)
	if err != nil {
		return nil, ReposOutput{}, err
	}

	opts := driving.SearchOptions{
		Query:     input.Query,
		FullMatch: input.FullMatch,
	}

	repos, err := s.ports.Browser.Search(ctx, s.ports.UserID, provider, opts)
	if err != nil {
		return nil, ReposOutput{}, err
	}

	return nil, mapRepos(repos), nil
}
