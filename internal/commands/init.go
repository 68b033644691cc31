package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cardledger/cardledger/internal/config"
	"github.com/cardledger/cardledger/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var force, git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new cardledger project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, force, git)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&git, "git", false, "track the ledger in git and commit after each ingest")

	return cmd
}

func runInit(out io.Writer, dir string, force, git bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	cfg := config.Default()
	cfg.Git.Commit = git

	// Create directory structure.
	for _, d := range []string{
		cfg.Inbox.Dir,
		cfg.Inbox.ProcessedDir,
		filepath.Dir(cfg.Ledger.FailuresPath),
	} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Statement files carry their password in the name.
	gitignore := cfg.Inbox.Dir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if git && !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Initialized cardledger project at %s\n", dir)
	return nil
}
