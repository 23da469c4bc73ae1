package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Engine computes sales tax against the current jurisdiction table.
type Engine interface {
	Compute(ctx context.Context, code string, category Category, amount decimal.Decimal) Result
	Jurisdiction(code string) (Jurisdiction, bool)
	Jurisdictions() []Jurisdiction
	Version() string
}

// TableSource yields the table in effect. Implementations may swap it at
// runtime; callers must not cache the returned pointer across operations.
type TableSource interface {
	Get() *Table
}
