package importer

import (
	"regexp"
	"strings"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/normalize"
)

// RBL prints "DD MMM YYYY description amount" with no sign marker and no
// reference. Credits are recognized from the description, and references
// are always synthesized. Some extractors leave "(cid:N)" glyph codes in
// place of characters.
type RBLParser struct {
	rules Rules
}

func NewRBLParser(rules Rules) *RBLParser {
	return &RBLParser{rules: rules}
}

func (p *RBLParser) Institution() model.Institution { return model.InstitutionRBL }

var (
	rblDay  = regexp.MustCompile(`^\d{1,2}\s+[A-Za-z]{3}\s+\d{4}\b`)
	rblLine = regexp.MustCompile(`^(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\s+(.+?)\s+((?:₹|Rs\.?)?\s*[\d,]+(?:\.\d+)?)$`)
)

func (p *RBLParser) Parse(doc extract.Document) model.ParseResult {
	return withFallback(
		func() *collector { return newCollector(model.InstitutionRBL, normalize.DayMonYear) },
		func(c *collector) {
			for i, t := range doc.Tables {
				p.parseTable(c, i, t)
			}
		},
		func(c *collector) {
			for i, raw := range doc.Lines {
				p.parseLine(c, textLine(i), raw, false)
			}
		},
	)
}

func (p *RBLParser) isTransactionTable(t extract.Table) bool {
	for _, row := range t {
		if p.rules.IsHeader(row) {
			return true
		}
		for _, cell := range row {
			if rblDay.MatchString(normalize.DecodeGlyphs(strings.TrimSpace(cell))) {
				return true
			}
		}
	}
	return false
}

func (p *RBLParser) parseTable(c *collector, ti int, t extract.Table) {
	if !p.isTransactionTable(t) {
		return
	}
	for r, row := range t {
		if extract.IsBlankRow(row) || p.rules.IsHeader(row) {
			continue
		}
		where := tableRow(ti, r)
		cells := nonEmpty(row)
		if len(cells) == 1 && strings.Contains(cells[0], "\n") {
			for li, line := range extract.SplitCell(cells[0]) {
				p.parseLine(c, cellLine(where, li), line, true)
			}
			continue
		}
		p.parseLine(c, where, strings.Join(cells, " "), true)
	}
}

// parseLine handles one printed transaction. In strict mode every non-blank
// line is a candidate; otherwise only lines opening with a date are.
func (p *RBLParser) parseLine(c *collector, where, raw string, strict bool) {
	line := flatten(normalize.DecodeGlyphs(raw))
	if line == "" || p.rules.IsHeader([]string{line}) {
		return
	}
	dated := rblDay.MatchString(line)
	if !dated && !strict {
		return
	}
	if p.rules.IsBoilerplate(line) {
		c.warn(where, "non-transaction line: %s", line)
		return
	}
	m := rblLine.FindStringSubmatch(line)
	if m == nil {
		c.warn(where, "unrecognized transaction line: %s", line)
		return
	}
	c.add(where, fields{
		Date:        m[1],
		Description: m[2],
		Amount:      m[3],
		Sign:        normalize.KeywordSign{Description: m[2], Credit: p.rules.Credit},
	})
}
