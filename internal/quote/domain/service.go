package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// LineInput describes a quote line. ID keeps an existing line's identity on
// update so purchase orders linked to it stay linked.
type LineInput struct {
	ID          snowflake.ID
	Category    string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

type CreateQuoteRequest struct {
	ClientID     *snowflake.ID
	ClientName   string
	ClientEmail  string
	ClientPhone  string
	Jurisdiction string
	Notes        string
	Lines        []LineInput
}

// UpdateQuoteRequest changes only the non-nil fields. A non-nil Lines
// replaces every line.
type UpdateQuoteRequest struct {
	ID           snowflake.ID
	ClientName   *string
	ClientEmail  *string
	ClientPhone  *string
	Jurisdiction *string
	Status       *Status
	Notes        *string
	Lines        *[]LineInput
}

type PreviewRequest struct {
	Jurisdiction string
	Lines        []LineInput
}

type Service interface {
	Create(ctx context.Context, req CreateQuoteRequest) (Quote, error)
	Update(ctx context.Context, req UpdateQuoteRequest) (Quote, error)
	SetStatus(ctx context.Context, id snowflake.ID, status Status) (Quote, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Quote, error)
	// Resolve accepts either a numeric id or a display number such as Q-0001.
	Resolve(ctx context.Context, ref string) (Quote, error)
	List(ctx context.Context, filter ListFilter) ([]Quote, error)
	Preview(ctx context.Context, req PreviewRequest) (Totals, error)
}
