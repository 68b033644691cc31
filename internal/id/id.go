package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// fieldSep joins identity fields. It is the ASCII unit separator, which no
// statement text contains.
const fieldSep = "\x1f"

const dateFormat = "2006-01-02"

// IdentityHash returns the hex SHA-256 of a transaction's identity fields.
// Amounts are rendered with two decimals so "1234.5" and "1234.50" agree.
func IdentityHash(date time.Time, institution, externalID, description string, amount decimal.Decimal) string {
	return HashFields(date.Format(dateFormat), institution, externalID, description, amount.StringFixed(2))
}

// HashFields hashes already-rendered identity fields. Ledger readers use it
// to recompute hashes from stored text without reparsing.
func HashFields(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, fieldSep)))
	return hex.EncodeToString(sum[:])
}

// Synthesize derives a stable reference for a row whose statement carries
// none, e.g. "RBL_20240115_AMAZONRETA_1f2e3d4c". It depends only on its
// arguments, so a row printed twice gets the same reference both times.
func Synthesize(prefix string, date time.Time, description string, amount decimal.Decimal) string {
	digest := HashFields(date.Format(dateFormat), description, amount.StringFixed(2))
	return fmt.Sprintf("%s_%s_%s_%s", strings.ToUpper(prefix), date.Format("20060102"), alnumPrefix(description, 10), digest[:8])
}

func alnumPrefix(s string, n int) string {
	out := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	out = strings.ToUpper(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
