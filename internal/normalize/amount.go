package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when amount text is not a positive decimal
// once sign markers and currency symbols are removed.
var ErrInvalidAmount = errors.New("invalid amount")

// SignResolver strips an institution's sign marker from raw amount text and
// reports whether the marker denotes a credit. The returned text still has
// currency symbols and thousands separators; ParseAmount removes those.
type SignResolver interface {
	Resolve(raw string) (text string, credit bool)
}

// ParseAmount parses raw amount text and returns it in the canonical sign
// convention: positive for money spent (debit), negative for money credited back.
func ParseAmount(raw string, r SignResolver) (decimal.Decimal, error) {
	text, credit := r.Resolve(strings.TrimSpace(raw))
	text = stripCurrency(text)
	if !plainNumber.MatchString(text) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	if d.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %q is zero", ErrInvalidAmount, raw)
	}
	if credit {
		return d.Neg(), nil
	}
	return d, nil
}

var (
	plainNumber = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

	currencyTokens = strings.NewReplacer(
		",", "",
		"₹", "",
		"`", "",
		"INR", "",
		"Rs.", "",
		"Rs", "",
		" ", "",
	)

	drCrMarker   = regexp.MustCompile(`(?i)^(?:(dr|cr|debit|credit)\.?\s*)?(.*?)(?:\s*(dr|cr|debit|credit)\.?)?$`)
	creditSuffix = regexp.MustCompile(`(?i)\s*cr\.?$`)
	cdMarker     = regexp.MustCompile(`^(.*?)\s+([CD])$`)
)

func stripCurrency(s string) string {
	return currencyTokens.Replace(strings.TrimSpace(s))
}

// DrCrMarker resolves "Dr"/"Cr" (or "Debit"/"Credit") letter codes placed
// before or after the number. Unmarked amounts are debits.
type DrCrMarker struct{}

func (DrCrMarker) Resolve(raw string) (string, bool) {
	m := drCrMarker.FindStringSubmatch(raw)
	if m == nil {
		return raw, false
	}
	marker := strings.ToLower(m[1] + m[3])
	return m[2], strings.HasPrefix(marker, "cr")
}

// CreditSuffix treats a trailing "CR" (any case) as a credit; anything else is a debit.
type CreditSuffix struct{}

func (CreditSuffix) Resolve(raw string) (string, bool) {
	if loc := creditSuffix.FindStringIndex(raw); loc != nil {
		return raw[:loc[0]], true
	}
	return raw, false
}

// LeadingPlus treats a leading "+" as a credit. The rupee glyph that some
// extractors render as a leading "C" is dropped.
type LeadingPlus struct{}

func (LeadingPlus) Resolve(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	credit := strings.HasPrefix(s, "+")
	if credit {
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasPrefix(s, "C") {
		s = strings.TrimSpace(s[1:])
	}
	return s, credit
}

// CDMarker resolves a space-separated trailing "C" or "D".
type CDMarker struct{}

func (CDMarker) Resolve(raw string) (string, bool) {
	m := cdMarker.FindStringSubmatch(raw)
	if m == nil {
		return raw, false
	}
	return m[1], m[2] == "C"
}

// KeywordSign infers the sign from the transaction narrative: a description
// containing any of the credit keywords is a credit.
type KeywordSign struct {
	Description string
	Credit      Keywords
}

func (k KeywordSign) Resolve(raw string) (string, bool) {
	return raw, k.Credit.Match(k.Description)
}

// Keywords is a case-insensitive substring set.
type Keywords []string

// Match reports whether s contains any keyword.
func (k Keywords) Match(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range k {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
