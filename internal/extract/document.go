package extract

import (
	"context"
	"errors"
	"strings"
)

// ErrExtraction means the document could not be decrypted or read at all:
// wrong password, corrupt file, or a failed extractor. It is distinct from a
// readable document that simply has no tables.
var ErrExtraction = errors.New("extraction failed")

// Table is one extracted table: rows of text cells. Cells may hold line
// breaks where the source merged several physical lines into one cell.
type Table [][]string

// Document is the extracted content of one statement.
type Document struct {
	Tables []Table  `yaml:"tables"`
	Lines  []string `yaml:"lines"`
}

// Reader extracts tables and text from an encrypted statement.
type Reader interface {
	Read(ctx context.Context, content []byte, password string) (Document, error)
}

// Cell returns row[i] trimmed, or "" when the row is too short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// RowText joins a row's cells into one lower-case line, folding line breaks.
func RowText(row []string) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		c = strings.Join(strings.Fields(c), " ")
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// IsBlankRow reports whether every cell is empty.
func IsBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SplitCell splits a merged cell into its non-empty trimmed lines.
func SplitCell(cell string) []string {
	var out []string
	for _, l := range strings.Split(cell, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
