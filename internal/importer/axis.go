package importer

import (
	"regexp"
	"strings"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/normalize"
)

// Axis statements carry a header row naming the columns, which can sit a few
// rows into the table and wrap over two rows. Dates are DD/MM/YYYY; amounts
// carry a "Dr" or "Cr" marker, sometimes in the next cell.
type AxisParser struct {
	rules Rules
}

func NewAxisParser(rules Rules) *AxisParser {
	return &AxisParser{rules: rules}
}

func (p *AxisParser) Institution() model.Institution { return model.InstitutionAxis }

var (
	axisLine    = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}[/-]\d{4})\s+(.+?)\s+((?:Rs\.?|INR|₹)?\s*[\d,]+(?:\.\d+)?(?:\s*(?i:dr|cr))?)$`)
	axisLineDay = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{4}\b`)
	drCrCell    = regexp.MustCompile(`(?i)^(dr|cr)\.?$`)
)

func (p *AxisParser) Parse(doc extract.Document) model.ParseResult {
	return withFallback(
		func() *collector { return newCollector(model.InstitutionAxis, normalize.DMY) },
		func(c *collector) {
			for i, t := range doc.Tables {
				p.parseTable(c, i, t)
			}
		},
		func(c *collector) { p.parseLines(c, doc.Lines) },
	)
}

func (p *AxisParser) isHeader(row []string) bool {
	if p.rules.IsHeader(row) {
		return true
	}
	for _, c := range row {
		if strings.EqualFold(strings.TrimSpace(c), "date") {
			return true
		}
	}
	return false
}

func (p *AxisParser) parseTable(c *collector, ti int, t extract.Table) {
	h := findHeaderRow(t, p.isHeader)
	if h < 0 {
		return
	}
	headers, start := mergeHeaderRows(t, h, p.rules.Columns)

	dateCol := columnIndex(headers, p.rules.Column("date"))
	descCol := columnIndex(headers, p.rules.Column("description"))
	amountCol := columnIndex(headers, p.rules.Column("amount"))
	refCol := columnIndex(headers, p.rules.Column("reference"))
	if dateCol < 0 || descCol < 0 || amountCol < 0 {
		c.warn(tableRow(ti, h), "header lacks a date, description or amount column")
		return
	}

	for r := start; r < len(t); r++ {
		row := t[r]
		if extract.IsBlankRow(row) || p.isHeader(row) {
			continue
		}
		where := tableRow(ti, r)
		if text := extract.RowText(row); p.rules.IsBoilerplate(text) {
			c.warn(where, "non-transaction row: %s", text)
			continue
		}

		amount := flatten(extract.Cell(row, amountCol))
		if next := extract.Cell(row, amountCol+1); drCrCell.MatchString(next) && amountCol+1 != descCol {
			amount += " " + next
		}
		c.add(where, fields{
			Date:        flatten(extract.Cell(row, dateCol)),
			Description: extract.Cell(row, descCol),
			Amount:      amount,
			Ref:         flatten(extract.Cell(row, refCol)),
			Sign:        normalize.DrCrMarker{},
		})
	}
}

func (p *AxisParser) parseLines(c *collector, lines []string) {
	for i, raw := range lines {
		line := flatten(raw)
		if !axisLineDay.MatchString(line) {
			continue
		}
		where := textLine(i)
		if p.rules.IsBoilerplate(line) {
			c.warn(where, "non-transaction line: %s", line)
			continue
		}
		m := axisLine.FindStringSubmatch(line)
		if m == nil {
			c.warn(where, "unrecognized transaction line: %s", line)
			continue
		}
		c.add(where, fields{Date: m[1], Description: m[2], Amount: m[3], Sign: normalize.DrCrMarker{}})
	}
}
