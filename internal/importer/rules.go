package importer

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/normalize"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules is the layout knowledge for one institution: which rows are column
// headers, what the columns are called, and which rows are boilerplate.
type Rules struct {
	Header      []normalize.Keywords          `yaml:"header"`
	Columns     map[string]normalize.Keywords `yaml:"columns"`
	Boilerplate normalize.Keywords            `yaml:"boilerplate"`
	Credit      normalize.Keywords            `yaml:"credit"`
}

// IsHeader reports whether row matches every header keyword group.
func (r Rules) IsHeader(row []string) bool {
	if len(r.Header) == 0 {
		return false
	}
	text := extract.RowText(row)
	for _, group := range r.Header {
		if !group.Match(text) {
			return false
		}
	}
	return true
}

// IsBoilerplate reports whether text is a summary, total or page-furniture row.
func (r Rules) IsBoilerplate(text string) bool {
	return r.Boilerplate.Match(text)
}

// Column returns the header keywords for a named column.
func (r Rules) Column(name string) normalize.Keywords {
	return r.Columns[name]
}

// RuleSet maps institution tags to their rules.
type RuleSet map[string]Rules

// For returns the rules for inst, or zero Rules when none are defined.
func (rs RuleSet) For(inst model.Institution) Rules {
	return rs[inst.Tag()]
}

// LoadRules decodes a YAML rule set.
func LoadRules(r io.Reader) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.NewDecoder(r).Decode(&rs); err != nil {
		if err == io.EOF {
			return RuleSet{}, nil
		}
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	for tag := range rs {
		if _, ok := model.ParseInstitution(tag); !ok {
			return nil, fmt.Errorf("parsing rules: %w: %q", ErrUnsupportedInstitution, tag)
		}
	}
	return rs, nil
}

// DefaultRules returns the built-in rule set.
func DefaultRules() RuleSet {
	var out RuleSet
	if err := yaml.Unmarshal(defaultRules, &out); err != nil {
		panic(fmt.Sprintf("importer: built-in rules: %v", err))
	}
	return out
}

// DefaultRulesYAML returns the built-in rules as YAML text.
func DefaultRulesYAML() []byte {
	return append([]byte(nil), defaultRules...)
}

// LoadRulesFile reads a rules file and overlays it on the built-in rules.
// Institutions named in the file replace their built-in entry wholesale.
func LoadRulesFile(path string) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules: %w", err)
	}
	defer f.Close()

	override, err := LoadRules(f)
	if err != nil {
		return nil, err
	}
	rs := DefaultRules()
	for tag, r := range override {
		rs[tag] = r
	}
	return rs, nil
}
