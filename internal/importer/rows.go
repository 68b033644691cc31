package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/id"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/normalize"
)

// fields is the raw text of one candidate row before normalization.
type fields struct {
	Date        string
	Description string
	Amount      string
	Ref         string
	Sign        normalize.SignResolver
	Drop        []string // fragments removed from the description
}

// collector accumulates the candidates and warnings of one parse attempt.
type collector struct {
	inst     model.Institution
	layout   normalize.DateLayout
	txns     []model.Transaction
	warnings []model.Warning
}

func newCollector(inst model.Institution, layout normalize.DateLayout) *collector {
	return &collector{
		inst:   inst,
		layout: layout,
	}
}

func (c *collector) warn(where, format string, args ...any) {
	c.warnings = append(c.warnings, model.Warning{Row: where, Reason: fmt.Sprintf(format, args...)})
}

// add normalizes f and records it as a candidate, or records a warning.
func (c *collector) add(where string, f fields) bool {
	date, err := normalize.ParseDate(f.Date, c.layout)
	if err != nil {
		c.warn(where, "%v", err)
		return false
	}
	amount, err := normalize.ParseAmount(f.Amount, f.Sign)
	if err != nil {
		c.warn(where, "%v", err)
		return false
	}
	if strings.TrimSpace(f.Description) == "" {
		c.warn(where, "missing description")
		return false
	}
	desc := normalize.CleanDescription(f.Description, f.Drop...)

	ref := strings.TrimSpace(f.Ref)
	if ref == "" {
		ref = id.Synthesize(c.inst.Tag(), date, desc, amount)
	}
	c.txns = append(c.txns, model.NewTransaction(date, c.inst, ref, desc, amount))
	return true
}

func (c *collector) result() model.ParseResult {
	switch {
	case len(c.txns) == 0 && len(c.warnings) > 0:
		return model.Failure(fmt.Errorf("%w: %d rows rejected", ErrAllRowsFailed, len(c.warnings)), c.warnings...)
	case len(c.warnings) > 0:
		return model.PartialSuccess(c.txns, c.warnings)
	default:
		return model.Success(c.txns)
	}
}

// withFallback runs the table pass and, only when it yields no candidates,
// the text pass. Table warnings survive only if the text pass finds nothing
// either.
func withFallback(newC func() *collector, tables, text func(*collector)) model.ParseResult {
	tc := newC()
	tables(tc)
	if len(tc.txns) > 0 {
		return tc.result()
	}

	xc := newC()
	text(xc)
	if len(xc.txns) == 0 {
		xc.warnings = append(tc.warnings, xc.warnings...)
	}
	return xc.result()
}

func tableRow(table, row int) string {
	return fmt.Sprintf("table %d row %d", table+1, row+1)
}

func textLine(line int) string {
	return fmt.Sprintf("line %d", line+1)
}

// cellLine names one line of a multi-line cell.
func cellLine(where string, line int) string {
	return fmt.Sprintf("%s line %d", where, line+1)
}

// findHeaderRow returns the index of the first row isHeader accepts, or -1.
func findHeaderRow(t extract.Table, isHeader func([]string) bool) int {
	for i, row := range t {
		if isHeader(row) {
			return i
		}
	}
	return -1
}

// columnIndex returns the first header cell matching kw, or -1. Keywords are
// tried in order so a specific name wins over a generic one.
func columnIndex(headers []string, kw normalize.Keywords) int {
	for _, k := range kw {
		for i, h := range headers {
			if normalize.Keywords([]string{k}).Match(h) {
				return i
			}
		}
	}
	return -1
}

// mergeHeaderRows folds header rows that wrap onto following rows into one.
// A following row is merged while any of its cells names a known column.
// It returns the merged headers and the index of the first data row.
func mergeHeaderRows(t extract.Table, h int, columns map[string]normalize.Keywords) ([]string, int) {
	headers := make([]string, len(t[h]))
	for i, c := range t[h] {
		headers[i] = strings.Join(strings.Fields(c), " ")
	}

	next := h + 1
	for ; next < len(t); next++ {
		row := t[next]
		if extract.IsBlankRow(row) || anyDateCell(row) || !namesColumn(row, columns) {
			break
		}
		for i, c := range row {
			c = strings.Join(strings.Fields(c), " ")
			if c == "" {
				continue
			}
			if i >= len(headers) {
				headers = append(headers, make([]string, i-len(headers)+1)...)
			}
			headers[i] = strings.TrimSpace(headers[i] + " " + c)
		}
	}
	return headers, next
}

func namesColumn(row []string, columns map[string]normalize.Keywords) bool {
	for _, c := range row {
		for _, kw := range columns {
			if strings.TrimSpace(c) != "" && kw.Match(c) {
				return true
			}
		}
	}
	return false
}

var numericDate = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)

func anyDateCell(row []string) bool {
	for _, c := range row {
		if numericDate.MatchString(c) {
			return true
		}
	}
	return false
}

// nonEmpty returns the trimmed non-empty cells of row.
func nonEmpty(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// flatten joins a cell's lines with single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
