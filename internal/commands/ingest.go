package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardledger/cardledger/internal/failurelog"
	"github.com/cardledger/cardledger/internal/gitops"
	"github.com/cardledger/cardledger/internal/inbox"
	"github.com/cardledger/cardledger/internal/ingest"
	"github.com/cardledger/cardledger/internal/ledger"
	"github.com/cardledger/cardledger/internal/logger"
	"github.com/cardledger/cardledger/internal/outcome"
)

func newIngestCommand(opts *rootOptions) *cobra.Command {
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Process every statement in the inbox into the ledger",
		Long: "Process every statement in the inbox into the ledger.\n\n" +
			"With --watch the inbox is polled at the given interval until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			ctx, err := a.withLogger(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if watch <= 0 {
				return a.cycle(ctx, cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.poll(ctx, cmd.OutOrStdout(), watch)
		},
	}

	cmd.Flags().DurationVar(&watch, "watch", 0, "poll the inbox at this interval (e.g. 5m)")

	return cmd
}

func (a *app) processor() *ingest.Processor {
	return &ingest.Processor{
		Source:   inbox.New(a.cfg.Inbox.Dir, a.cfg.Inbox.ProcessedDir),
		Reader:   a.reader,
		Registry: a.registry,
		Ledger:   ledger.NewCSVStore(a.cfg.Ledger.Path),
		Failures: failurelog.New(a.cfg.Ledger.FailuresPath),
		Workers:  a.cfg.Workers,
	}
}

// cycle runs one processing cycle, prints each file's outcome, and commits
// the ledger when configured to.
func (a *app) cycle(ctx context.Context, out io.Writer) error {
	results, err := a.processor().Run(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(out, r)
	}
	s := outcome.Summarize(results)
	fmt.Fprintf(out, "%d files: %d inserted, %d skipped, %d failed (%d rows written)\n",
		s.Files, s.Inserted, s.Skipped, s.Failed, s.Rows)

	if !a.cfg.Git.Commit || s.Rows == 0 {
		return nil
	}
	return a.commit(ctx, out, s)
}

func (a *app) commit(ctx context.Context, out io.Writer, s outcome.Summary) error {
	var paths []string
	for _, p := range []string{a.cfg.Ledger.Path, a.cfg.Ledger.FailuresPath} {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}

	msg := fmt.Sprintf("ingest: %d rows from %d files", s.Rows, s.Inserted)
	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitPaths(a.root, msg, author, paths...)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("commit", hash).Msg("ledger committed")
	fmt.Fprintf(out, "committed %s in %s\n", hash, filepath.Base(a.root))
	return nil
}

// poll runs a cycle immediately and then every interval. A failed cycle is
// logged and retried on the next tick.
func (a *app) poll(ctx context.Context, out io.Writer, interval time.Duration) error {
	log := logger.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := a.cycle(ctx, out); err != nil {
			log.Error().Err(err).Msg("cycle failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
