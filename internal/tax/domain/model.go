package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Category routes a line item to the taxability rule that applies to it.
type Category string

const (
	CategoryProduct Category = "product"
	CategoryService Category = "service"
	CategoryLabor   Category = "labor"
	CategoryFreight Category = "freight"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryProduct, CategoryService, CategoryLabor, CategoryFreight:
		return true
	default:
		return false
	}
}

// ParseCategory normalizes user input into a Category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	return c, c.Valid()
}

// Jurisdiction is one row of the static tax table. The freight and labor
// flags are independent of the rate.
type Jurisdiction struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	CombinedRate   decimal.Decimal `json:"combined_rate"`
	FreightTaxable bool            `json:"freight_taxable"`
	LaborTaxable   bool            `json:"labor_taxable"`
	Notes          string          `json:"notes,omitempty"`
}

// Outcome tags how a tax result was produced.
type Outcome string

const (
	OutcomeComputed            Outcome = "computed"
	OutcomeUnknownJurisdiction Outcome = "unknown_jurisdiction"
	OutcomeUnknownCategory     Outcome = "unknown_category"
)

// Result is the tax on a single amount. Unknown inputs yield zero tax with
// the matching Outcome instead of an error.
type Result struct {
	TaxAmount decimal.Decimal `json:"tax_amount"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Taxable   bool            `json:"taxable"`
	Outcome   Outcome         `json:"outcome"`
}

func (r Result) Known() bool {
	return r.Outcome == OutcomeComputed
}

// Table is an immutable, validated jurisdiction table.
type Table struct {
	version       string
	jurisdictions []Jurisdiction
	index         map[string]int
}

// NewTable validates the rows and indexes them by code. Rows are kept sorted
// by display name.
func NewTable(version string, rows []Jurisdiction) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	sorted := make([]Jurisdiction, len(rows))
	copy(sorted, rows)
	for i := range sorted {
		sorted[i].Code = NormalizeCode(sorted[i].Code)
		sorted[i].Name = strings.TrimSpace(sorted[i].Name)
		if sorted[i].Code == "" {
			return nil, ErrInvalidJurisdictionCode
		}
		if sorted[i].CombinedRate.IsNegative() {
			return nil, ErrInvalidTaxRate
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	index := make(map[string]int, len(sorted))
	for i, j := range sorted {
		if _, dup := index[j.Code]; dup {
			return nil, ErrDuplicateJurisdiction
		}
		index[j.Code] = i
	}

	return &Table{
		version:       strings.TrimSpace(version),
		jurisdictions: sorted,
		index:         index,
	}, nil
}

func (t *Table) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}

func (t *Table) Lookup(code string) (Jurisdiction, bool) {
	if t == nil {
		return Jurisdiction{}, false
	}
	i, ok := t.index[NormalizeCode(code)]
	if !ok {
		return Jurisdiction{}, false
	}
	return t.jurisdictions[i], true
}

// All returns a copy of the rows sorted by name.
func (t *Table) All() []Jurisdiction {
	if t == nil {
		return nil
	}
	out := make([]Jurisdiction, len(t.jurisdictions))
	copy(out, t.jurisdictions)
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.jurisdictions)
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
