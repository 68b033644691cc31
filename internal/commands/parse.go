package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/importer"
	"github.com/cardledger/cardledger/internal/ingest"
	"github.com/cardledger/cardledger/internal/model"
)

func newParseCommand(opts *rootOptions) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse one statement and print its transactions without touching the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			name := filepath.Base(args[0])

			if dump {
				sf, err := importer.ParseFilename(name)
				if err != nil {
					return err
				}
				doc, err := a.reader.Read(cmd.Context(), content, sf.Password)
				if err != nil {
					return err
				}
				return extract.EncodeDump(cmd.OutOrStdout(), doc)
			}

			res, err := ingest.ParseDocument(cmd.Context(), a.reader, a.registry, name, content)
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Err != nil {
				return fmt.Errorf("%s: %w", name, res.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "print the extracted tables and lines instead of parsing")

	return cmd
}

func printResult(out io.Writer, res model.ParseResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if len(res.Transactions) > 0 {
		fmt.Fprintln(tw, "DATE\tINSTITUTION\tEXTERNAL ID\tDESCRIPTION\tAMOUNT")
		for _, t := range res.Transactions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.DateString(), t.Institution, t.ExternalID, t.Description, t.Amount.StringFixed(2))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	fmt.Fprintf(out, "%s: %d transactions, %d warnings\n", res.Kind(), len(res.Transactions), len(res.Warnings))
	return nil
}
