package commands

import (
	"github.com/spf13/cobra"

	"github.com/cardledger/cardledger/internal/buildinfo"
)

type rootOptions struct {
	configPath string
	envFile    string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "cardledger",
		Short:   "Credit card statement parsing and ledger ingestion",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "cardledger.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file (default: .env next to the config file)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newParseCommand(opts))
	rootCmd.AddCommand(newIngestCommand(opts))
	rootCmd.AddCommand(newRulesCommand(opts))

	return rootCmd
}
