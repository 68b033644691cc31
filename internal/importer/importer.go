package importer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cardledger/cardledger/internal/extract"
	"github.com/cardledger/cardledger/internal/model"
)

var (
	// ErrUnsupportedInstitution is returned for a tag no parser handles.
	ErrUnsupportedInstitution = errors.New("unsupported institution")
	// ErrAllRowsFailed means the document had candidate rows but none parsed.
	ErrAllRowsFailed = errors.New("all rows failed")
)

// Parser turns one institution's extracted statement into candidates.
// Parsers are pure: the same document always yields the same result.
type Parser interface {
	Institution() model.Institution
	Parse(doc extract.Document) model.ParseResult
}

// Registry holds the available parsers, keyed by institution tag.
type Registry struct {
	parsers map[string]Parser
}

func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. It panics if the institution is already registered.
func (r *Registry) Register(p Parser) {
	tag := p.Institution().Tag()
	if _, exists := r.parsers[tag]; exists {
		panic(fmt.Sprintf("importer: parser %q already registered", tag))
	}
	r.parsers[tag] = p
}

// Get returns the parser for tag (case-insensitive), or nil if none exists.
func (r *Registry) Get(tag string) Parser {
	return r.parsers[strings.ToLower(strings.TrimSpace(tag))]
}

// Dispatch returns the parser for tag or ErrUnsupportedInstitution.
func (r *Registry) Dispatch(tag string) (Parser, error) {
	p := r.Get(tag)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInstitution, tag)
	}
	return p, nil
}

// Tags returns the registered institution tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.parsers))
	for t := range r.parsers {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// NewRegistryWithRules returns a registry with all five institution parsers
// configured from rs.
func NewRegistryWithRules(rs RuleSet) *Registry {
	r := NewRegistry()
	r.Register(NewAxisParser(rs.For(model.InstitutionAxis)))
	r.Register(NewHDFCParser(rs.For(model.InstitutionHDFC)))
	r.Register(NewICICIParser(rs.For(model.InstitutionICICI)))
	r.Register(NewRBLParser(rs.For(model.InstitutionRBL)))
	r.Register(NewSBIParser(rs.For(model.InstitutionSBI)))
	return r
}

// DefaultRegistry returns a registry configured with the built-in rules.
func DefaultRegistry() *Registry {
	return NewRegistryWithRules(DefaultRules())
}

// Parse runs p on doc. A panic inside the parser becomes a Failure so one
// malformed document cannot take down a processing cycle.
func Parse(p Parser, doc extract.Document) (res model.ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			res = model.Failure(fmt.Errorf("%s parser panicked: %v", p.Institution(), r))
		}
	}()
	return p.Parse(doc)
}
