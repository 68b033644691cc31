package importer

import (
	"regexp"
	"strings"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/normalize"
)

// HDFC has two statement formats. The older one prints one transaction per
// table row with a trailing "Cr" on credits. The newer one packs a whole
// page of transactions into a single cell, one per line, as
// "DD/MM/YYYY| HH:MM description [+] C amount" where "+" marks a credit and
// "C" is the rupee glyph.
type HDFCParser struct {
	rules Rules
}

func NewHDFCParser(rules Rules) *HDFCParser {
	return &HDFCParser{rules: rules}
}

func (p *HDFCParser) Institution() model.Institution { return model.InstitutionHDFC }

const hdfcAmount = `(?:\+\s*)?(?:C\s*)?[\d,]+(?:\.\d+)?(?:\s*(?i:cr))?`

var (
	hdfcDay      = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}\b`)
	hdfcCellLine = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}\s*\|`)
	hdfcLine     = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4}(?:\s*\|\s*\d{1,2}:\d{2})?)\s+(.+?)\s+(` + hdfcAmount + `)(?:\s+[^\d\s]{1,2})?$`)
	hdfcTrailing = regexp.MustCompile(`^(.+?)\s+(` + hdfcAmount + `)$`)
	hdfcRefTag   = regexp.MustCompile(`Ref#\s*(\d+)`)
	hdfcLongNum  = regexp.MustCompile(`\b\d{8,}\b`)
	hdfcName     = regexp.MustCompile(`^[A-Z][A-Z.]*(?:\s+[A-Z][A-Z.]*){0,3}$`)
)

func (p *HDFCParser) Parse(doc extract.Document) model.ParseResult {
	return withFallback(
		func() *collector { return newCollector(model.InstitutionHDFC, normalize.DMY) },
		func(c *collector) {
			for i, t := range doc.Tables {
				p.parseTable(c, i, t)
			}
		},
		func(c *collector) { p.parseLines(c, doc.Lines) },
	)
}

// tableStart returns the first data row of a transaction table, or -1 when
// the table holds no transactions.
func (p *HDFCParser) tableStart(t extract.Table) int {
	if h := findHeaderRow(t, p.rules.IsHeader); h >= 0 {
		return h + 1
	}
	for i, row := range t {
		if i >= 3 {
			break
		}
		for _, cell := range row {
			if hdfcCellLine.MatchString(cell) {
				return i
			}
		}
	}
	return -1
}

func (p *HDFCParser) parseTable(c *collector, ti int, t extract.Table) {
	start := p.tableStart(t)
	if start < 0 {
		return
	}

	for r := start; r < len(t); r++ {
		row := t[r]
		if extract.IsBlankRow(row) || p.rules.IsHeader(row) {
			continue
		}
		where := tableRow(ti, r)
		cells := nonEmpty(row)

		if len(cells) == 1 && hdfcCellLine.MatchString(cells[0]) {
			for li, line := range extract.SplitCell(cells[0]) {
				p.parseLine(c, cellLine(where, li), line, true)
			}
			continue
		}

		text := extract.RowText(row)
		if p.rules.IsBoilerplate(text) || isNameRow(cells) {
			c.warn(where, "non-transaction row: %s", text)
			continue
		}

		var date, desc, amount string
		switch {
		case len(cells) >= 3:
			date, desc, amount = flatten(cells[0]), cells[1], flatten(cells[len(cells)-1])
		case len(cells) == 2:
			date, desc = flatten(cells[0]), flatten(cells[1])
			if m := hdfcTrailing.FindStringSubmatch(desc); m != nil {
				desc, amount = m[1], m[2]
			}
		default:
			c.warn(where, "unexpected row layout: %s", text)
			continue
		}
		p.add(c, where, date, desc, amount)
	}
}

func (p *HDFCParser) parseLines(c *collector, lines []string) {
	for i, raw := range lines {
		p.parseLine(c, textLine(i), raw, false)
	}
}

// parseLine handles one printed transaction line. In strict mode every
// non-blank line is a candidate; otherwise only lines opening with a date are.
func (p *HDFCParser) parseLine(c *collector, where, raw string, strict bool) {
	line := flatten(raw)
	if line == "" {
		return
	}
	dated := hdfcDay.MatchString(line)
	if !dated && !strict {
		return
	}
	if p.rules.IsBoilerplate(line) || (!dated && hdfcName.MatchString(line)) {
		c.warn(where, "non-transaction line: %s", line)
		return
	}
	m := hdfcLine.FindStringSubmatch(line)
	if m == nil {
		c.warn(where, "unrecognized transaction line: %s", line)
		return
	}
	p.add(c, where, m[1], m[2], m[3])
}

func (p *HDFCParser) add(c *collector, where, date, desc, amount string) {
	ref, drop := hdfcReference(desc)
	c.add(where, fields{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Ref:         ref,
		Sign:        hdfcSign(amount),
		Drop:        drop,
	})
}

// hdfcSign picks the resolver for the format the amount was printed in.
func hdfcSign(amount string) normalize.SignResolver {
	a := strings.TrimSpace(amount)
	if strings.HasPrefix(a, "+") || strings.HasPrefix(a, "C") {
		return normalize.LeadingPlus{}
	}
	return normalize.CreditSuffix{}
}

func hdfcReference(desc string) (string, []string) {
	if m := hdfcRefTag.FindStringSubmatch(desc); m != nil {
		return m[1], []string{m[0]}
	}
	if m := hdfcLongNum.FindString(desc); m != "" {
		return m, []string{m}
	}
	return "", nil
}

// isNameRow reports whether a row is just the cardholder's name, which HDFC
// repeats above each page of transactions.
func isNameRow(cells []string) bool {
	return len(cells) == 1 && hdfcName.MatchString(flatten(cells[0]))
}
