package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/failurelog"
	"github.com/cardledger/cardledger/internal/importer"
	"github.com/cardledger/cardledger/internal/inbox"
	"github.com/cardledger/cardledger/internal/ledger"
	"github.com/cardledger/cardledger/internal/logger"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/outcome"
)

const axisDump = `lines:
  - 15/01/2024  AMAZON RETAIL  1,234.50 Dr
  - 16/01/2024  PAYMENT RECEIVED  5,000.00 Cr
`

var fixed = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

type env struct {
	root     string
	inbox    *inbox.Dir
	ledger   *ledger.CSVStore
	failures *failurelog.Log
	proc     *Processor
}

func setup(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		root:     root,
		inbox:    inbox.New(filepath.Join(root, "inbox"), filepath.Join(root, "processed")),
		ledger:   ledger.NewCSVStore(filepath.Join(root, "ledger.csv")),
		failures: failurelog.New(filepath.Join(root, "logs", "failures.csv")),
	}
	e.ledger.Now = func() time.Time { return fixed }
	require.NoError(t, os.MkdirAll(e.inbox.Path, 0o755))
	e.proc = &Processor{
		Source:   e.inbox,
		Reader:   extract.DumpReader{},
		Registry: importer.DefaultRegistry(),
		Ledger:   e.ledger,
		Failures: e.failures,
		Workers:  2,
		Now:      func() time.Time { return fixed },
	}
	return e
}

func (e *env) drop(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.inbox.Path, name), []byte(content), 0o644))
}

func (e *env) ledgerRows(t *testing.T) []ledger.Record {
	t.Helper()
	recs, err := e.ledger.Existing(context.Background())
	require.NoError(t, err)
	return recs
}

func statuses(results []outcome.Result) map[string]outcome.Status {
	m := make(map[string]outcome.Status, len(results))
	for _, r := range results {
		m[r.File] = r.Status
	}
	return m
}

func TestRun_InsertsAndRecordsFailures(t *testing.T) {
	e := setup(t)
	e.drop(t, "axis-pw-jan2024.pdf", axisDump)
	e.drop(t, "amex-pw-jan2024.pdf", axisDump)

	results, err := e.proc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Results come back in file name order.
	assert.Equal(t, "amex-pw-jan2024.pdf", results[0].File)
	assert.Equal(t, outcome.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Reason, "unsupported institution")

	assert.Equal(t, outcome.StatusInserted, results[1].Status)
	assert.Equal(t, 2, results[1].Inserted)

	rows := e.ledgerRows(t)
	require.Len(t, rows, 2)
	assert.Equal(t, "Axis", rows[0].Institution)
	assert.Equal(t, "AMAZON RETAIL", rows[0].Description)

	failures, err := e.failures.Read()
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "amex-pw-jan2024.pdf", failures[0].Filename)
	assert.True(t, fixed.Equal(failures[0].Timestamp))

	assert.FileExists(t, filepath.Join(e.inbox.ProcessedDir, "axis-pw-jan2024.pdf"))
	assert.FileExists(t, filepath.Join(e.inbox.Path, "amex-pw-jan2024.pdf"))
}

func TestRun_ReprocessingIsSkipped(t *testing.T) {
	e := setup(t)
	e.drop(t, "axis-pw-jan2024.pdf", axisDump)
	_, err := e.proc.Run(context.Background())
	require.NoError(t, err)

	e.drop(t, "axis-pw-jan2024-copy.pdf", axisDump)
	results, err := e.proc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, outcome.StatusSkipped, results[0].Status)
	assert.Equal(t, 2, results[0].Duplicates)

	assert.Len(t, e.ledgerRows(t), 2)
	assert.FileExists(t, filepath.Join(e.inbox.ProcessedDir, "axis-pw-jan2024-copy.pdf"))
}

func TestRun_DuplicatesAcrossFilesInOneCycle(t *testing.T) {
	e := setup(t)
	e.drop(t, "axis-a-jan.pdf", axisDump)
	e.drop(t, "axis-b-jan.pdf", axisDump)

	results, err := e.proc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]outcome.Status{
		"axis-a-jan.pdf": outcome.StatusInserted,
		"axis-b-jan.pdf": outcome.StatusSkipped,
	}, statuses(results))
	assert.Len(t, e.ledgerRows(t), 2)
}

func TestRun_NoTransactionsIsLoggedAndFailed(t *testing.T) {
	e := setup(t)
	e.drop(t, "sbi-pw-nov.pdf", "lines:\n  - Statement for November\n")

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))

	results, err := e.proc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, outcome.StatusFailed, results[0].Status)
	assert.Equal(t, outcome.ReasonNoTransactions, results[0].Reason)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "no transactions found")
	assert.Empty(t, e.ledgerRows(t))
}

func TestRun_ExtractionFailure(t *testing.T) {
	e := setup(t)
	e.drop(t, "hdfc-pw-jan.pdf", "tables: [[[")

	results, err := e.proc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, outcome.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Reason, "extraction failed")
}

type failingStore struct {
	ledger.Store
}

func (failingStore) Append(context.Context, []model.Transaction) error {
	return errors.New("ledger write failed: disk full")
}

func TestRun_WriteFailureKeepsFile(t *testing.T) {
	e := setup(t)
	e.proc.Ledger = failingStore{e.ledger}
	e.drop(t, "axis-pw-jan2024.pdf", axisDump)

	results, err := e.proc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, outcome.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Reason, "disk full")
	assert.FileExists(t, filepath.Join(e.inbox.Path, "axis-pw-jan2024.pdf"))
}

func TestRun_EmptyInbox(t *testing.T) {
	e := setup(t)
	results, err := e.proc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRun_BadLedger(t *testing.T) {
	e := setup(t)
	require.NoError(t, os.WriteFile(e.ledger.Path, []byte("garbage\n"), 0o644))
	e.drop(t, "axis-pw-jan2024.pdf", axisDump)

	_, err := e.proc.Run(context.Background())
	assert.Error(t, err)
}

func TestParseDocument(t *testing.T) {
	reg := importer.DefaultRegistry()

	res, err := ParseDocument(context.Background(), extract.DumpReader{}, reg, "axis-pw-jan.pdf", []byte(axisDump))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	_, err = ParseDocument(context.Background(), extract.DumpReader{}, reg, "statement.pdf", []byte(axisDump))
	assert.ErrorIs(t, err, importer.ErrInvalidFilename)

	_, err = ParseDocument(context.Background(), extract.DumpReader{}, reg, "amex-pw-jan.pdf", []byte(axisDump))
	assert.ErrorIs(t, err, importer.ErrUnsupportedInstitution)
}
