// Package cli implements the forgecache command line interface. It is
// a driving adapter: commands parse flags, call the core services
// through their driving ports, and format the results.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/forgecache/internal/adapters/driven/config/file"
	"github.com/custodia-labs/forgecache/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/forgecache/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/forgecache/internal/connectors/bitbucket"
	"github.com/custodia-labs/forgecache/internal/connectors/gitea"
	"github.com/custodia-labs/forgecache/internal/connectors/gitee"
	"github.com/custodia-labs/forgecache/internal/connectors/github"
	"github.com/custodia-labs/forgecache/internal/connectors/gitlab"
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
	"github.com/custodia-labs/forgecache/internal/core/services"
	"github.com/custodia-labs/forgecache/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Wired during initServices. Package level so command RunE funcs and
// tests can reach them.
var (
	appConfig   *file.Config
	browser     driving.RepositoryBrowser
	repoService *services.RepoService
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "forgecache",
	Short: "Cached repository browsing across git forges",
	Long: `forgecache keeps fast local caches of the repository lists behind
your GitHub, GitLab, Gitea, Bitbucket and Gitee accounts, so listing
and searching them does not hammer the forge APIs on every call.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.forgecache/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices loads the config and wires the engine with the
// configured cache backend and all provider connectors.
func initServices() error {
	if repoService != nil {
		return nil
	}

	cfg, err := file.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	repoService = svc
	browser = svc
	return nil
}

// buildService assembles a RepoService from a loaded config.
func buildService(cfg *file.Config) (*services.RepoService, error) {
	var svc *services.RepoService

	switch cfg.CacheBackend {
	case "", "memory":
		svc = services.NewRepoService(
			memory.NewRepoCache(),
			memory.NewBuildTracker(),
			file.NewCredentialSource(cfg),
			cfg.EngineConfig(),
		)
	case "sqlite":
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		svc = services.NewRepoService(
			store,
			store,
			file.NewCredentialSource(cfg),
			cfg.EngineConfig(),
		)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	svc.RegisterAdapter(github.NewAdapter())
	svc.RegisterAdapter(gitlab.NewAdapter())
	svc.RegisterAdapter(gitea.NewAdapter())
	svc.RegisterAdapter(bitbucket.NewAdapter())
	svc.RegisterAdapter(gitee.NewAdapter())

	return svc, nil
}
