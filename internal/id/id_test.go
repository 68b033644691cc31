package id

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var day = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestIdentityHash_Deterministic(t *testing.T) {
	a := IdentityHash(day, "Axis", "REF1", "AMAZON RETAIL", decimal.RequireFromString("1234.5"))
	b := IdentityHash(day, "Axis", "REF1", "AMAZON RETAIL", decimal.RequireFromString("1234.50"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestIdentityHash_FieldSensitivity(t *testing.T) {
	base := IdentityHash(day, "Axis", "REF1", "AMAZON RETAIL", decimal.RequireFromString("10.00"))

	variants := []string{
		IdentityHash(day.AddDate(0, 0, 1), "Axis", "REF1", "AMAZON RETAIL", decimal.RequireFromString("10.00")),
		IdentityHash(day, "HDFC", "REF1", "AMAZON RETAIL", decimal.RequireFromString("10.00")),
		IdentityHash(day, "Axis", "REF2", "AMAZON RETAIL", decimal.RequireFromString("10.00")),
		IdentityHash(day, "Axis", "REF1", "AMAZON RETAIL.", decimal.RequireFromString("10.00")),
		IdentityHash(day, "Axis", "REF1", "AMAZON RETAIL", decimal.RequireFromString("-10.00")),
	}
	for i, v := range variants {
		assert.NotEqual(t, base, v, "variant %d", i)
	}
}

func TestHashFields_SeparatorIsUnambiguous(t *testing.T) {
	assert.NotEqual(t, HashFields("ab", "c"), HashFields("a", "bc"))
}

func TestIdentityHash_MatchesHashFields(t *testing.T) {
	got := IdentityHash(day, "SBI", "X", "Y", decimal.RequireFromString("5.04"))
	assert.Equal(t, HashFields("2024-01-15", "SBI", "X", "Y", "5.04"), got)
}

func TestSynthesize_Stable(t *testing.T) {
	amt := decimal.RequireFromString("160.00")

	first := Synthesize("rbl", day, "MS OMR MALL DEVELOPER", amt)
	again := Synthesize("rbl", day, "MS OMR MALL DEVELOPER", amt)
	assert.Equal(t, first, again)
	assert.Regexp(t, `^RBL_20240115_MSOMRMALLD_[0-9a-f]{8}$`, first)
}

func TestSynthesize_FieldSensitivity(t *testing.T) {
	amt := decimal.RequireFromString("90.00")
	base := Synthesize("sbi", day, "COFFEE", amt)

	assert.NotEqual(t, base, Synthesize("sbi", day, "TEA", amt))
	assert.NotEqual(t, base, Synthesize("sbi", day.AddDate(0, 0, 1), "COFFEE", amt))
	assert.NotEqual(t, base, Synthesize("sbi", day, "COFFEE", decimal.RequireFromString("-90.00")))
	assert.NotContains(t, base, "-")
}
