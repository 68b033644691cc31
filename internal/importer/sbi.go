package importer

import (
	"regexp"
	"strings"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/normalize"
)

// SBI tables have three columns (date, details, amount) and often merge a
// page of transactions into one row of multi-line cells. Dates are
// "DD MMM YY" and amounts end in "C" (credit) or "D" (debit). When the lines
// of those cells do not line up, records are reassembled from the text.
type SBIParser struct {
	rules Rules
}

func NewSBIParser(rules Rules) *SBIParser {
	return &SBIParser{rules: rules}
}

func (p *SBIParser) Institution() model.Institution { return model.InstitutionSBI }

// sbiMaxRecordLines bounds how many text lines one record may span.
const sbiMaxRecordLines = 4

const sbiAmount = "(?:₹|`|Rs\\.?)?\\s*[\\d,]+(?:\\.\\d+)?\\s+[CD]"

var (
	sbiDay       = regexp.MustCompile(`^\d{1,2}\s+[A-Za-z]{3}\s+\d{2}\b`)
	sbiAmountRe  = regexp.MustCompile(`^` + sbiAmount + `$`)
	sbiRecord    = regexp.MustCompile(`^(\d{1,2}\s+[A-Za-z]{3}\s+\d{2})\s+(.+?)\s+(` + sbiAmount + `)$`)
	sbiPaymentID = regexp.MustCompile(`\b000DP\d+[A-Za-z0-9]*\b`)
	sbiToken     = regexp.MustCompile(`\b[A-Z0-9]{6,}\b`)
	hasDigit     = regexp.MustCompile(`\d`)
)

func (p *SBIParser) Parse(doc extract.Document) model.ParseResult {
	tc := p.newCollector()
	misaligned := 0
	for i, t := range doc.Tables {
		misaligned += p.parseTable(tc, i, t)
	}
	if len(tc.txns) > 0 && misaligned == 0 {
		return tc.result()
	}

	xc := p.newCollector()
	p.parseLines(xc, doc.Lines)
	if len(xc.txns) == 0 {
		tc.warnings = append(tc.warnings, xc.warnings...)
		return tc.result()
	}

	// The tables show how many records to expect. When the text yields
	// fewer, the table warnings point at the rows that were lost.
	if want := len(tc.txns) + misaligned; len(xc.txns) < want {
		xc.warnings = append(xc.warnings, tc.warnings...)
		xc.warn("text", "reassembled %d of %d table records", len(xc.txns), want)
	}
	return xc.result()
}

func (p *SBIParser) newCollector() *collector {
	return newCollector(model.InstitutionSBI, normalize.DayMonShortYear)
}

func (p *SBIParser) isTransactionTable(t extract.Table) bool {
	if len(t) == 0 || len(t[0]) != 3 {
		return false
	}
	for _, row := range t {
		if p.rules.IsHeader(row) {
			return true
		}
		if len(row) == 3 && sbiDay.MatchString(strings.TrimSpace(row[0])) {
			return true
		}
	}
	return false
}

// parseTable records the table's transactions and returns how many records
// sit in rows whose cell lines could not be paired up.
func (p *SBIParser) parseTable(c *collector, ti int, t extract.Table) int {
	if !p.isTransactionTable(t) {
		return 0
	}

	misaligned := 0
	for r, row := range t {
		if extract.IsBlankRow(row) || p.rules.IsHeader(row) {
			continue
		}
		where := tableRow(ti, r)
		if len(row) != 3 {
			c.warn(where, "expected 3 cells, got %d", len(row))
			continue
		}

		dates := extract.SplitCell(row[0])
		descs := extract.SplitCell(row[1])
		amounts := extract.SplitCell(row[2])
		switch {
		case len(dates) == 0 && len(amounts) == 0:
			c.warn(where, "non-transaction row: %s", extract.RowText(row))
		case len(dates) == 1 && len(amounts) == 1:
			p.add(c, where, dates[0], strings.Join(descs, " "), amounts[0])
		case len(dates) == len(amounts) && len(descs) == len(dates):
			for k := range dates {
				p.add(c, cellLine(where, k), dates[k], descs[k], amounts[k])
			}
		default:
			misaligned += max(len(dates), len(amounts))
			c.warn(where, "misaligned cells: %d dates, %d descriptions, %d amounts", len(dates), len(descs), len(amounts))
		}
	}
	return misaligned
}

func (p *SBIParser) add(c *collector, where, date, desc, amount string) {
	desc = flatten(desc)
	if p.rules.IsBoilerplate(desc) {
		c.warn(where, "non-transaction row: %s", desc)
		return
	}
	ref := sbiReference(desc)
	c.add(where, fields{
		Date:        date,
		Description: desc,
		Amount:      flatten(amount),
		Ref:         ref,
		Sign:        normalize.CDMarker{},
		Drop:        []string{ref},
	})
}

// parseLines reassembles records from text: a record opens on a line that
// starts with a date and closes on the line that completes "amount C|D".
// A line holding only a payment reference right after a record is that
// record's reference.
func (p *SBIParser) parseLines(c *collector, lines []string) {
	var (
		pending []string
		start   int
		last    = -1 // index into c.txns of the record just closed
	)
	for i, raw := range lines {
		line := flatten(raw)
		if line == "" {
			continue
		}

		switch {
		case sbiDay.MatchString(line):
			if pending != nil {
				c.warn(textLine(start), "incomplete record: %s", strings.Join(pending, " "))
			}
			pending, start, last = []string{line}, i, -1
		case pending != nil:
			pending = append(pending, line)
		default:
			if last >= 0 && sbiPaymentID.FindString(line) == line {
				p.attachRef(c, last, line)
			}
			last = -1
			continue
		}

		joined := strings.Join(pending, " ")
		if m := sbiRecord.FindStringSubmatch(joined); m != nil {
			before := len(c.txns)
			p.add(c, textLine(start), m[1], m[2], m[3])
			if len(c.txns) > before && sbiReference(m[2]) == "" {
				last = len(c.txns) - 1
			}
			pending = nil
			continue
		}
		if len(pending) >= sbiMaxRecordLines || sbiAmountRe.MatchString(line) {
			c.warn(textLine(start), "unrecognized record: %s", joined)
			pending = nil
		}
	}
	if pending != nil {
		c.warn(textLine(start), "incomplete record: %s", strings.Join(pending, " "))
	}
}

// attachRef replaces a synthesized reference with one found on the next line.
func (p *SBIParser) attachRef(c *collector, i int, ref string) {
	t := c.txns[i]
	c.txns[i] = model.NewTransaction(t.Date, t.Institution, ref, t.Description, t.Amount)
}

// sbiReference finds a payment reference, or failing that a long uppercase
// token containing a digit, in a description.
func sbiReference(desc string) string {
	if m := sbiPaymentID.FindString(desc); m != "" {
		return m
	}
	for _, tok := range sbiToken.FindAllString(desc, -1) {
		if hasDigit.MatchString(tok) {
			return tok
		}
	}
	return ""
}
