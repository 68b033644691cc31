package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/id"
	"github.com/cardledger/cardledger/internal/model"
)

// Header is the CSV header of the ledger file.
const Header = "Date,Institution,External Id,Description,Amount,Category,Processed Timestamp"

const (
	numFields    = 7
	dateFormat   = "2006-01-02"
	colDate      = 0
	colInst      = 1
	colExtID     = 2
	colDesc      = 3
	colAmount    = 4
	colCategory  = 5
	colProcessed = 6
)

// Record is one stored ledger row.
type Record struct {
	Date        time.Time
	Institution string
	ExternalID  string
	Description string
	Amount      decimal.Decimal
	Category    string
	ProcessedAt time.Time
}

// IdentityHash recomputes the row's identity hash from its stored fields.
func (r Record) IdentityHash() string {
	return id.HashFields(r.Date.Format(dateFormat), r.Institution, r.ExternalID, r.Description, r.Amount.StringFixed(2))
}

// MarshalTransaction converts a transaction to a ledger row. Category is
// left as the transaction has it, which is blank at insert time.
func MarshalTransaction(t model.Transaction, processedAt time.Time) []string {
	row := make([]string, numFields)
	row[colDate] = t.Date.Format(dateFormat)
	row[colInst] = string(t.Institution)
	row[colExtID] = t.ExternalID
	row[colDesc] = t.Description
	row[colAmount] = t.Amount.StringFixed(2)
	row[colCategory] = t.Category
	row[colProcessed] = processedAt.Format(time.RFC3339)
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(record []string) (Record, error) {
	if len(record) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return Record{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Record{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var processed time.Time
	if record[colProcessed] != "" {
		processed, err = time.Parse(time.RFC3339, record[colProcessed])
		if err != nil {
			return Record{}, fmt.Errorf("parsing processed timestamp %q: %w", record[colProcessed], err)
		}
	}

	return Record{
		Date:        date,
		Institution: record[colInst],
		ExternalID:  record[colExtID],
		Description: record[colDesc],
		Amount:      amount,
		Category:    record[colCategory],
		ProcessedAt: processed,
	}, nil
}

// ReadRecords reads every row from a ledger CSV reader.
func ReadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	// Row numbers are file line numbers.
	first := 1
	if len(records) > 0 && strings.Join(records[0], ",") == Header {
		records, first = records[1:], 2
	}

	var out []Record
	for i, rec := range records {
		row, err := UnmarshalRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+first, err)
		}
		out = append(out, row)
	}
	return out, nil
}

// WriteTransactions writes txns as ledger rows, preceded by the header when
// withHeader is set.
func WriteTransactions(w io.Writer, txns []model.Transaction, processedAt time.Time, withHeader bool) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t, processedAt)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
