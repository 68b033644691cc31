package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw    string
		layout DateLayout
		want   string
	}{
		{"15/01/2024", DMY, "2024-01-15"},
		{"5/1/2024", DMY, "2024-01-05"},
		{"15-01-2024", DMY, "2024-01-15"},
		{"15/01/2024| 14:05", DMY, "2024-01-15"},
		{"15/01/2024 09:30:12 PM", DMY, "2024-01-15"},
		{"15/01/24", DMYShort, "2024-01-15"},
		{"15 Jan 2024", DayMonYear, "2024-01-15"},
		{"15  JAN 2024", DayMonYear, "2024-01-15"},
		{"28 Nov 24", DayMonShortYear, "2024-11-28"},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.raw, tt.layout)
		require.NoError(t, err, "raw: %s", tt.raw)
		assert.Equal(t, tt.want, FormatDate(got), "raw: %s", tt.raw)
	}
}

func TestParseDate_Errors(t *testing.T) {
	tests := []struct {
		raw    string
		layout DateLayout
	}{
		{"", DMY},
		{"31/02/2024", DMY},
		{"01/13/2024", DMY},
		{"15 Jan 2024", DMY},
		{"15/01/2024", DayMonYear},
		{"15/01/1850", DMY},
		{"TOTAL", DayMonShortYear},
	}
	for _, tt := range tests {
		_, err := ParseDate(tt.raw, tt.layout)
		assert.ErrorIs(t, err, ErrInvalidDate, "raw: %s", tt.raw)
	}
}

func TestParseAmount_Signs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		resolver SignResolver
		want     string
	}{
		{"dr suffix", "1,234.50 Dr", DrCrMarker{}, "1234.50"},
		{"cr suffix", "1,234.50 Cr", DrCrMarker{}, "-1234.50"},
		{"cr prefix", "Cr 99.00", DrCrMarker{}, "-99.00"},
		{"credit word", "INR 10.00 Credit", DrCrMarker{}, "-10.00"},
		{"unmarked debit", "Rs. 42", DrCrMarker{}, "42.00"},
		{"CR suffix", "2,000.00 CR", CreditSuffix{}, "-2000.00"},
		{"no suffix", "₹ 2,000.00", CreditSuffix{}, "2000.00"},
		{"plus credit", "+ C 1,500.00", LeadingPlus{}, "-1500.00"},
		{"glyph debit", "C 320.00", LeadingPlus{}, "320.00"},
		{"C marker", "5.04 C", CDMarker{}, "-5.04"},
		{"D marker", "1,200.00 D", CDMarker{}, "1200.00"},
		{"backtick", "` 75.00 D", CDMarker{}, "75.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.resolver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestParseAmount_KeywordSign(t *testing.T) {
	credit := Keywords{"refund", "payment"}

	got, err := ParseAmount("500.00", KeywordSign{Description: "UPI-REFUND-XYZ", Credit: credit})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("-500.00")))

	got, err = ParseAmount("160.00", KeywordSign{Description: "MS OMR MALL", Credit: credit})
	require.NoError(t, err)
	assert.True(t, got.IsPositive())
}

func TestParseAmount_Errors(t *testing.T) {
	bad := []string{"", "abc", "12.3.4", "0.00 Dr", "-5.00", "1,2a"}
	for _, raw := range bad {
		_, err := ParseAmount(raw, DrCrMarker{})
		assert.ErrorIs(t, err, ErrInvalidAmount, "raw: %q", raw)
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		raw  string
		drop []string
		want string
	}{
		{"  AMAZON\nRETAIL   ", nil, "AMAZON RETAIL"},
		{"SWIGGY Ref# 123456789 BANGALORE", []string{"Ref# 123456789"}, "SWIGGY BANGALORE"},
		{"| UBER TRIP -", nil, "UBER TRIP"},
		{"(cid:68)(cid:114)(cid:69)(cid:65)(cid:77) CAFE", nil, "DrEAM CAFE"},
		{"123456", []string{"123456"}, "123456"},
		{"", nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanDescription(tt.raw, tt.drop...), "raw: %q", tt.raw)
	}
}

func TestKeywordsMatch(t *testing.T) {
	k := Keywords{"Opening Balance", "total"}
	assert.True(t, k.Match("OPENING BALANCE 1,000.00"))
	assert.True(t, k.Match("Page Total"))
	assert.False(t, k.Match("AMAZON"))
	assert.False(t, Keywords(nil).Match("anything"))
}
