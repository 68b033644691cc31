package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/id"
)

// Institution is the ledger name of a supported card issuer.
type Institution string

const (
	InstitutionAxis  Institution = "Axis"
	InstitutionHDFC  Institution = "HDFC"
	InstitutionICICI Institution = "ICICI"
	InstitutionRBL   Institution = "RBL"
	InstitutionSBI   Institution = "SBI"
)

// Institutions lists every supported institution in tag order.
var Institutions = []Institution{
	InstitutionAxis,
	InstitutionHDFC,
	InstitutionICICI,
	InstitutionRBL,
	InstitutionSBI,
}

// Tag returns the lower-case short code used in file names.
func (i Institution) Tag() string { return strings.ToLower(string(i)) }

// ParseInstitution maps a tag (any case) to its Institution.
func ParseInstitution(tag string) (Institution, bool) {
	t := strings.ToLower(strings.TrimSpace(tag))
	for _, inst := range Institutions {
		if inst.Tag() == t {
			return inst, true
		}
	}
	return "", false
}

// Transaction is a candidate extracted from one statement row.
type Transaction struct {
	Date         time.Time
	Institution  Institution
	ExternalID   string
	Description  string
	Amount       decimal.Decimal // positive = spent (debit), negative = credited back
	Category     string          // set by a human later, never by parsing
	IdentityHash string
}

// NewTransaction builds a candidate and computes its identity hash.
func NewTransaction(date time.Time, inst Institution, externalID, description string, amount decimal.Decimal) Transaction {
	return Transaction{
		Date:         date,
		Institution:  inst,
		ExternalID:   externalID,
		Description:  description,
		Amount:       amount,
		IdentityHash: id.IdentityHash(date, string(inst), externalID, description, amount),
	}
}

// DateString returns the ISO year-month-day form of Date.
func (t Transaction) DateString() string { return t.Date.Format("2006-01-02") }
