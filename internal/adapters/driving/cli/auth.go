package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/forgecache/internal/adapters/driven/config/file"
	"github.com/custodia-labs/forgecache/internal/core/domain"
)

var (
	authDomain   string
	authToken    string
	authUsername string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage forge credentials",
}

var authAddCmd = &cobra.Command{
	Use:   "add <provider>",
	Short: "Add a credential entry",
	Long: `Adds a personal access token for a forge domain to the config file.
Bitbucket uses app passwords, so --username is required there.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthAdd,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured credentials",
	RunE:  runAuthList,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove <provider>",
	Short: "Remove credential entries for a provider domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

func init() {
	authAddCmd.Flags().StringVar(&authDomain, "domain", "", "forge domain, e.g. github.com or git.example.com")
	authAddCmd.Flags().StringVar(&authToken, "token", "", "personal access token or app password")
	authAddCmd.Flags().StringVar(&authUsername, "username", "", "account username (bitbucket only)")
	authAddCmd.MarkFlagRequired("domain") //nolint:errcheck
	authAddCmd.MarkFlagRequired("token")  //nolint:errcheck

	authRemoveCmd.Flags().StringVar(&authDomain, "domain", "", "forge domain to remove entries for")
	authRemoveCmd.MarkFlagRequired("domain") //nolint:errcheck

	authCmd.AddCommand(authAddCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthAdd(cmd *cobra.Command, args []string) error {
	if appConfig == nil {
		return errors.New("config not loaded")
	}

	provider, err := providerArg(args[0])
	if err != nil {
		return err
	}
	if provider == domain.ProviderBitbucket && authUsername == "" {
		return errors.New("bitbucket requires --username alongside the app password")
	}

	appConfig.Credentials = append(appConfig.Credentials, file.CredentialSection{
		Provider: string(provider),
		Domain:   domain.CanonicalDomain(authDomain),
		Token:    authToken,
		Username: authUsername,
	})

	if err := appConfig.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Credential added for %s@%s.\n", provider, domain.CanonicalDomain(authDomain))
	return nil
}

func runAuthList(cmd *cobra.Command, _ []string) error {
	if appConfig == nil {
		return errors.New("config not loaded")
	}

	entries := appConfig.Entries()
	if len(entries) == 0 {
		cmd.Println("No credentials configured.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tDOMAIN\tUSERNAME")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Provider, domain.CanonicalDomain(e.Domain), e.Username)
	}
	return w.Flush()
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	if appConfig == nil {
		return errors.New("config not loaded")
	}

	provider, err := providerArg(args[0])
	if err != nil {
		return err
	}
	dom := domain.CanonicalDomain(authDomain)

	kept := appConfig.Credentials[:0]
	removed := 0
	for _, c := range appConfig.Credentials {
		if c.Provider == string(provider) && domain.CanonicalDomain(c.Domain) == dom {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	appConfig.Credentials = kept

	if removed == 0 {
		cmd.Printf("No credentials matched %s@%s.\n", provider, dom)
		return nil
	}

	if err := appConfig.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Removed %d credential(s) for %s@%s.\n", removed, provider, dom)
	return nil
}
