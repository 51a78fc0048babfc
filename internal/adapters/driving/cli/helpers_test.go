package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/forgecache/internal/adapters/driven/config/file"
	"github.com/custodia-labs/forgecache/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/services"
)

// fakeAdapter serves a fixed repository list for one provider.
type fakeAdapter struct {
	typ   domain.ProviderType
	repos []domain.RepositorySummary
	err   error
}

func (a *fakeAdapter) Type() domain.ProviderType { return a.typ }

func (a *fakeAdapter) ListPage(
	_ context.Context, _ domain.CredentialEntry, page, limit int,
) (domain.RepoPage, error) {
	if a.err != nil {
		return domain.RepoPage{}, a.err
	}
	start := (page - 1) * limit
	if start >= len(a.repos) {
		return domain.RepoPage{Total: len(a.repos)}, nil
	}
	end := start + limit
	if end > len(a.repos) {
		end = len(a.repos)
	}
	return domain.RepoPage{Repos: a.repos[start:end], Total: len(a.repos)}, nil
}

func testRepos() []domain.RepositorySummary {
	return []domain.RepositorySummary{
		{
			ID:       "1",
			Name:     "widget",
			FullName: "acme/widget",
			CloneURL: "https://git.example.com/acme/widget.git",
			Domain:   "git.example.com",
			Provider: domain.ProviderGitea,
			Private:  true,
		},
		{
			ID:       "2",
			Name:     "gadget",
			FullName: "acme/gadget",
			CloneURL: "https://git.example.com/acme/gadget.git",
			Domain:   "git.example.com",
			Provider: domain.ProviderGitea,
		},
	}
}

// setupTestServices wires the package-level services against in-memory
// backends and a fake gitea adapter. The returned cleanup restores the
// previous wiring.
func setupTestServices() func() {
	oldConfig := appConfig
	oldBrowser := browser
	oldService := repoService

	appConfig = &file.Config{
		User: "alice",
		Credentials: []file.CredentialSection{
			{Provider: "gitea", Domain: "git.example.com", Token: "tok"},
		},
	}

	svc := services.NewRepoService(
		memory.NewRepoCache(),
		memory.NewBuildTracker(),
		file.NewCredentialSource(appConfig),
		domain.EngineConfig{
			CacheTTL:     time.Minute,
			PageSize:     100,
			PollInterval: 5 * time.Millisecond,
			SearchWait:   time.Second,
		},
	)
	svc.RegisterAdapter(&fakeAdapter{typ: domain.ProviderGitea, repos: testRepos()})

	repoService = svc
	browser = svc

	return func() {
		appConfig = oldConfig
		browser = oldBrowser
		repoService = oldService
	}
}

// execute runs the root command with args and captures its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
