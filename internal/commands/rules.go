package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardledger/cardledger/internal/importer"
)

func newRulesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the parsing rules in effect",
		Long: "Print the per-institution header, boilerplate and credit keyword rules.\n\n" +
			"The output can be saved, edited, and named as rules_file in the config.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.RulesFile == "" {
				_, err = cmd.OutOrStdout().Write(importer.DefaultRulesYAML())
				return err
			}

			// Validate before echoing so a broken file is reported.
			if _, err := importer.LoadRulesFile(cfg.RulesFile); err != nil {
				return err
			}
			data, err := os.ReadFile(cfg.RulesFile)
			if err != nil {
				return fmt.Errorf("reading rules: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
