package importer

import (
	"regexp"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/normalize"
)

// ICICI statements have a serial-number column that serves as the
// transaction reference and put the amount in the last filled cell.
// Extractors often split the header row into a table of its own; it is
// stitched back onto the data table that follows.
type ICICIParser struct {
	rules Rules
}

func NewICICIParser(rules Rules) *ICICIParser {
	return &ICICIParser{rules: rules}
}

func (p *ICICIParser) Institution() model.Institution { return model.InstitutionICICI }

var (
	iciciDay    = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}\b`)
	iciciLine   = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s+(\d+)\s+(.+?)\s+([\d,]+(?:\.\d+)?(?:\s*(?i:cr))?)$`)
	iciciSerial = regexp.MustCompile(`^\d+$`)
)

// Default column positions when the header does not name them.
const (
	iciciDateCol = 0
	iciciSerCol  = 1
	iciciDescCol = 2
)

func (p *ICICIParser) Parse(doc extract.Document) model.ParseResult {
	return withFallback(
		func() *collector { return newCollector(model.InstitutionICICI, normalize.DMY) },
		func(c *collector) {
			for _, st := range p.stitch(doc.Tables) {
				p.parseTable(c, st.index, st.table)
			}
		},
		func(c *collector) { p.parseLines(c, doc.Lines) },
	)
}

type indexedTable struct {
	index int
	table extract.Table
}

// stitch joins a header-only table with the next data-bearing table.
// Tables that are neither are dropped.
func (p *ICICIParser) stitch(tables []extract.Table) []indexedTable {
	var out []indexedTable
	for i := 0; i < len(tables); i++ {
		t := tables[i]
		h := findHeaderRow(t, p.rules.IsHeader)
		if h < 0 {
			if p.looksLikeData(t) {
				out = append(out, indexedTable{i, t})
			}
			continue
		}
		if len(t)-h > 1 {
			out = append(out, indexedTable{i, t})
			continue
		}

		j := i + 1
		for j < len(tables) && len(tables[j]) == 0 {
			j++
		}
		if j < len(tables) && p.looksLikeData(tables[j]) && findHeaderRow(tables[j], p.rules.IsHeader) < 0 {
			joined := append(append(extract.Table{}, t...), tables[j]...)
			out = append(out, indexedTable{i, joined})
			i = j
		}
	}
	return out
}

func (p *ICICIParser) looksLikeData(t extract.Table) bool {
	for _, row := range t {
		if len(nonEmpty(row)) >= 3 && iciciDay.MatchString(extract.Cell(row, 0)) {
			return true
		}
	}
	return false
}

func (p *ICICIParser) parseTable(c *collector, ti int, t extract.Table) {
	dateCol, serCol, descCol := iciciDateCol, iciciSerCol, iciciDescCol
	start := 0
	if h := findHeaderRow(t, p.rules.IsHeader); h >= 0 {
		headers, next := mergeHeaderRows(t, h, p.rules.Columns)
		if i := columnIndex(headers, p.rules.Column("date")); i >= 0 {
			dateCol = i
		}
		if i := columnIndex(headers, p.rules.Column("serial")); i >= 0 {
			serCol = i
		}
		if i := columnIndex(headers, p.rules.Column("description")); i >= 0 {
			descCol = i
		}
		start = next
	}

	for r := start; r < len(t); r++ {
		row := t[r]
		if extract.IsBlankRow(row) || p.rules.IsHeader(row) {
			continue
		}
		where := tableRow(ti, r)
		text := extract.RowText(row)
		if p.rules.IsBoilerplate(text) {
			c.warn(where, "non-transaction row: %s", text)
			continue
		}
		if len(nonEmpty(row)) < 4 {
			c.warn(where, "too few cells: %s", text)
			continue
		}

		serial := flatten(extract.Cell(row, serCol))
		if !iciciSerial.MatchString(serial) {
			serial = ""
		}
		c.add(where, fields{
			Date:        flatten(extract.Cell(row, dateCol)),
			Description: extract.Cell(row, descCol),
			Amount:      lastCellAfter(row, descCol),
			Ref:         serial,
			Sign:        normalize.CreditSuffix{},
		})
	}
}

// lastCellAfter returns the last non-empty cell to the right of col.
func lastCellAfter(row []string, col int) string {
	for i := len(row) - 1; i > col; i-- {
		if s := flatten(row[i]); s != "" {
			return s
		}
	}
	return ""
}

func (p *ICICIParser) parseLines(c *collector, lines []string) {
	for i, raw := range lines {
		line := flatten(raw)
		if !iciciDay.MatchString(line) {
			continue
		}
		where := textLine(i)
		if p.rules.IsBoilerplate(line) {
			c.warn(where, "non-transaction line: %s", line)
			continue
		}
		m := iciciLine.FindStringSubmatch(line)
		if m == nil {
			c.warn(where, "unrecognized transaction line: %s", line)
			continue
		}
		c.add(where, fields{Date: m[1], Ref: m[2], Description: m[3], Amount: m[4], Sign: normalize.CreditSuffix{}})
	}
}
