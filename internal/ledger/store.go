package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cardledger/cardledger/internal/dedup"
	"github.com/cardledger/cardledger/internal/model"
)

// ErrWrite means a batch could not be written to the ledger. Nothing from
// the batch should be assumed stored.
var ErrWrite = errors.New("ledger write failed")

// Store is the ledger collaborator: it lists stored rows and appends
// batches of new ones.
type Store interface {
	Existing(ctx context.Context) ([]Record, error)
	Append(ctx context.Context, txns []model.Transaction) error
}

// SeenSet builds a dedup snapshot from every row in s.
func SeenSet(ctx context.Context, s Store) (dedup.SeenSet, error) {
	records, err := s.Existing(ctx)
	if err != nil {
		return dedup.SeenSet{}, err
	}
	hashes := make([]string, len(records))
	for i, r := range records {
		hashes[i] = r.IdentityHash()
	}
	return dedup.NewSeenSet(hashes...), nil
}

// CSVStore keeps the ledger in a single CSV file.
type CSVStore struct {
	Path string
	Now  func() time.Time // defaults to time.Now
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

// Existing returns every row in the file, or none if it does not exist yet.
func (s *CSVStore) Existing(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return records, nil
}

// Append writes txns in one write call, creating the file and header if
// needed. Every row of the batch carries the same processed timestamp.
func (s *CSVStore) Append(ctx context.Context, txns []model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("%w: creating ledger dir: %v", ErrWrite, err)
	}
	// An empty file gets a header too, so readers never mistake a row for it.
	needsHeader := false
	if info, err := os.Stat(s.Path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		needsHeader = true
	}

	var buf bytes.Buffer
	if err := WriteTransactions(&buf, txns, s.now(), needsHeader); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening ledger: %v", ErrWrite, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (s *CSVStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
