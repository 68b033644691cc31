package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseInstitution(t *testing.T) {
	tests := []struct {
		tag  string
		want Institution
	}{
		{"axis", InstitutionAxis},
		{"HDFC", InstitutionHDFC},
		{" Icici ", InstitutionICICI},
		{"rbl", InstitutionRBL},
		{"SbI", InstitutionSBI},
	}
	for _, tt := range tests {
		got, ok := ParseInstitution(tt.tag)
		assert.True(t, ok, "tag %q", tt.tag)
		assert.Equal(t, tt.want, got)
	}

	_, ok := ParseInstitution("amex")
	assert.False(t, ok)
}

func TestNewTransaction_HashIsPureFunction(t *testing.T) {
	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	a := NewTransaction(d, InstitutionAxis, "R1", "AMAZON", decimal.RequireFromString("1.5"))
	b := NewTransaction(d, InstitutionAxis, "R1", "AMAZON", decimal.RequireFromString("1.50"))

	assert.Equal(t, a.IdentityHash, b.IdentityHash)
	assert.Empty(t, a.Category)
	assert.Equal(t, "2024-01-15", a.DateString())
}

func TestParseResultKind(t *testing.T) {
	assert.Equal(t, ResultSuccess, Success(nil).Kind())
	assert.Equal(t, ResultPartialSuccess, PartialSuccess(nil, []Warning{{Row: "line 1", Reason: "x"}}).Kind())
	assert.Equal(t, ResultFailure, Failure(errors.New("boom")).Kind())
	assert.Equal(t, "line 3: bad date", Warning{Row: "line 3", Reason: "bad date"}.String())
}
