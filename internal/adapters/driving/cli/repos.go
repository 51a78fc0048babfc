package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/forgecache/internal/core/domain"
	"github.com/custodia-labs/forgecache/internal/core/ports/driving"
)

var (
	reposPage      int
	reposLimit     int
	reposJSON      bool
	searchFull     bool
	searchWaitSecs int
	searchJSON     bool
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Browse cached repository lists",
}

var reposListCmd = &cobra.Command{
	Use:   "list <provider>",
	Short: "List repositories for a provider",
	Long: `Lists one page of your repositories on a provider, concatenated
across all configured credential entries for that provider. Served from
the local cache when fresh; a cold cache triggers a fetch.`,
	Args: cobra.ExactArgs(1),
	RunE: runReposList,
}

var reposSearchCmd = &cobra.Command{
	Use:   "search <provider> <query>",
	Short: "Search repositories by name",
	Long: `Searches your complete repository lists on a provider. Matching is
case-insensitive substring containment against the name and full name,
or exact equality with --full-match. Cold caches are populated before
matching, so results are never partial.`,
	Args: cobra.ExactArgs(2),
	RunE: runReposSearch,
}

var reposRefreshCmd = &cobra.Command{
	Use:   "refresh <provider>",
	Short: "Drop cached lists for a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposRefresh,
}

func init() {
	reposListCmd.Flags().IntVarP(&reposPage, "page", "p", 1, "page number")
	reposListCmd.Flags().IntVarP(&reposLimit, "limit", "n", 0, "repositories per page (0 = config default)")
	reposListCmd.Flags().BoolVar(&reposJSON, "json", false, "output as JSON")

	reposSearchCmd.Flags().BoolVar(&searchFull, "full-match", false, "require an exact name match")
	reposSearchCmd.Flags().IntVar(&searchWaitSecs, "wait", 0, "seconds to wait on an in-flight refresh (0 = config default)")
	reposSearchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")

	reposCmd.AddCommand(reposListCmd)
	reposCmd.AddCommand(reposSearchCmd)
	reposCmd.AddCommand(reposRefreshCmd)
	rootCmd.AddCommand(reposCmd)
}

func providerArg(raw string) (domain.ProviderType, error) {
	p := domain.ProviderType(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q (expected one of github, gitlab, gitea, bitbucket, gitee)",
			domain.ErrUnsupportedProvider, raw)
	}
	return p, nil
}

func runReposList(cmd *cobra.Command, args []string) error {
	if browser == nil {
		return errors.New("repository service not configured")
	}

	provider, err := providerArg(args[0])
	if err != nil {
		return err
	}

	repos, err := browser.List(cmd.Context(), appConfig.UserID(), provider, reposPage, reposLimit)
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}

	defer repoService.WaitForBackgroundJobs()

	if reposJSON {
		return outputReposJSON(cmd, repos)
	}
	return outputReposTable(cmd, repos)
}

func runReposSearch(cmd *cobra.Command, args []string) error {
	if browser == nil {
		return errors.New("repository service not configured")
	}

	provider, err := providerArg(args[0])
	if err != nil {
		return err
	}

	opts := driving.SearchOptions{
		Query:     args[1],
		FullMatch: searchFull,
		Wait:      time.Duration(searchWaitSecs) * time.Second,
	}

	repos, err := browser.Search(cmd.Context(), appConfig.UserID(), provider, opts)
	if err != nil {
		if errors.Is(err, domain.ErrSearchTimeout) {
			return fmt.Errorf("a cache refresh is still running, try again shortly: %w", err)
		}
		return fmt.Errorf("searching repositories: %w", err)
	}

	if searchJSON {
		return outputReposJSON(cmd, repos)
	}
	return outputReposTable(cmd, repos)
}

func runReposRefresh(cmd *cobra.Command, args []string) error {
	if browser == nil {
		return errors.New("repository service not configured")
	}

	provider, err := providerArg(args[0])
	if err != nil {
		return err
	}

	if err := browser.Refresh(cmd.Context(), appConfig.UserID(), provider); err != nil {
		return fmt.Errorf("refreshing cache: %w", err)
	}

	cmd.Printf("Cache dropped for %s. The next list or search repopulates it.\n", provider)
	return nil
}

func outputReposJSON(cmd *cobra.Command, repos []domain.RepositorySummary) error {
	data, err := json.MarshalIndent(repos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repositories: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputReposTable(cmd *cobra.Command, repos []domain.RepositorySummary) error {
	if len(repos) == 0 {
		cmd.Println("No repositories found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDOMAIN\tVISIBILITY\tCLONE URL")
	for i := range repos {
		visibility := "public"
		if repos[i].Private {
			visibility = "private"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			repos[i].FullName, repos[i].Domain, visibility, repos[i].CloneURL)
	}
	return w.Flush()
}
