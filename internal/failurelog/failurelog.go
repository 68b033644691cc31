package failurelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry records one statement file that could not be processed.
type Entry struct {
	Timestamp time.Time
	Filename  string
	Reason    string
}

// Header is the CSV header of the failure log.
const Header = "Timestamp,Filename,Reason"

const (
	numFields    = 3
	colTimestamp = 0
	colFilename  = 1
	colReason    = 2
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colFilename] = e.Filename
	row[colReason] = e.Reason
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		Filename:  record[colFilename],
		Reason:    record[colReason],
	}, nil
}

// Log is an append-only CSV file of failures.
type Log struct {
	Path string
}

func New(path string) *Log {
	return &Log{Path: path}
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("creating failure log dir: %w", err)
	}

	needsHeader := false
	if info, err := os.Stat(l.Path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		needsHeader = true
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries. A missing file has no entries.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading failure log CSV: %w", err)
	}

	// Row numbers are file line numbers.
	first := 1
	if len(records) > 0 && strings.Join(records[0], ",") == Header {
		records, first = records[1:], 2
	}

	var entries []Entry
	for i, rec := range records {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+first, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
