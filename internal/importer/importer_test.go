package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertTxn(t *testing.T, txn model.Transaction, date, desc, amount string) {
	t.Helper()
	assert.Equal(t, date, txn.DateString())
	assert.Equal(t, desc, txn.Description)
	assert.True(t, dec(amount).Equal(txn.Amount), "amount: want %s, got %s", amount, txn.Amount)
	assert.NotEmpty(t, txn.ExternalID)
	assert.Len(t, txn.IdentityHash, 64)
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := DefaultRegistry()

	assert.Equal(t, []string{"axis", "hdfc", "icici", "rbl", "sbi"}, reg.Tags())

	for _, tag := range []string{"axis", "HDFC", " Icici ", "rbl", "sbi"} {
		p, err := reg.Dispatch(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(tag)), p.Institution().Tag())
	}

	_, err := reg.Dispatch("amex")
	assert.ErrorIs(t, err, ErrUnsupportedInstitution)
	assert.Nil(t, reg.Get("amex"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewRBLParser(Rules{}))
	assert.Panics(t, func() { reg.Register(NewRBLParser(Rules{})) })
}

type panicParser struct{}

func (panicParser) Institution() model.Institution { return model.InstitutionSBI }

func (panicParser) Parse(extract.Document) model.ParseResult {
	var t extract.Table
	_ = t[3]
	return model.ParseResult{}
}

func TestParse_RecoversPanic(t *testing.T) {
	res := Parse(panicParser{}, extract.Document{})
	require.Error(t, res.Err)
	assert.Equal(t, model.ResultFailure, res.Kind())
	assert.Contains(t, res.Err.Error(), "SBI parser panicked")
}

func TestParseFilename(t *testing.T) {
	f, err := ParseFilename("/inbox/hdfc-pass123-jan2024.pdf")
	require.NoError(t, err)
	assert.Equal(t, StatementFile{
		Name:        "hdfc-pass123-jan2024.pdf",
		Institution: model.InstitutionHDFC,
		Password:    "pass123",
		Identifier:  "jan2024",
	}, f)

	f, err = ParseFilename("SBI-x9-2024-01-card.PDF")
	require.NoError(t, err)
	assert.Equal(t, model.InstitutionSBI, f.Institution)
	assert.Equal(t, "2024-01-card", f.Identifier)

	_, err = ParseFilename("amex-pw-jan.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedInstitution)

	for _, bad := range []string{"hdfc-onlytwo.pdf", "notes.txt", "hdfc--jan.pdf", ".pdf"} {
		_, err = ParseFilename(bad)
		assert.ErrorIs(t, err, ErrInvalidFilename, bad)
	}
}

func TestDefaultRules(t *testing.T) {
	rs := DefaultRules()
	for _, inst := range model.Institutions {
		assert.NotEmpty(t, rs.For(inst).Header, inst)
		assert.NotEmpty(t, rs.For(inst).Boilerplate, inst)
	}
	assert.True(t, rs.For(model.InstitutionRBL).Credit.Match("UPI-REFUND"))
	assert.True(t, rs.For(model.InstitutionAxis).IsHeader([]string{"Date", "Transaction\nDetails", "Amount (Rs.)"}))
	assert.False(t, rs.For(model.InstitutionAxis).IsHeader([]string{"15/01/2024", "AMAZON", "1.00 Dr"}))
}

func TestLoadRules(t *testing.T) {
	_, err := LoadRules(strings.NewReader("amex:\n  header: [[date]]\n"))
	assert.ErrorIs(t, err, ErrUnsupportedInstitution)

	_, err = LoadRules(strings.NewReader("rbl: [not, a, map"))
	assert.Error(t, err)

	rs, err := LoadRules(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestLoadRulesFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rbl:\n  header: [[date description amount]]\n  credit: [cashback]\n"), 0o644))

	rs, err := LoadRulesFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cashback"}, []string(rs.For(model.InstitutionRBL).Credit))
	assert.Empty(t, rs.For(model.InstitutionRBL).Boilerplate)
	// Institutions not in the file keep their built-in rules.
	assert.NotEmpty(t, rs.For(model.InstitutionAxis).Boilerplate)

	_, err = LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParsers_Idempotent(t *testing.T) {
	reg := DefaultRegistry()
	docs := map[string]extract.Document{
		"axis":  axisDoc(),
		"hdfc":  hdfcLegacyDoc(),
		"icici": iciciDoc(),
		"rbl":   {Lines: []string{"15 Jan 2024 SWIGGY 100.00", "15 Jan 2024 SWIGGY 100.00"}},
		"sbi":   sbiAlignedDoc(),
	}
	for tag, doc := range docs {
		p, err := reg.Dispatch(tag)
		require.NoError(t, err)
		assert.Equal(t, p.Parse(doc), p.Parse(doc), tag)
	}
}

func TestParsers_EmptyDocument(t *testing.T) {
	reg := DefaultRegistry()
	for _, tag := range reg.Tags() {
		res := Parse(reg.Get(tag), extract.Document{})
		assert.Equal(t, model.ResultSuccess, res.Kind(), tag)
		assert.Empty(t, res.Transactions, tag)
	}
}
