package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	QuoteID       *snowflake.ID
	LineID        *snowflake.ID
	Vendor        string
	VendorContact string
	ShipToAddress string
	Description   string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Status        Status
	Notes         string
}

type UpdateRequest struct {
	ID            snowflake.ID
	Vendor        *string
	VendorContact *string
	ShipToAddress *string
	Description   *string
	Quantity      *decimal.Decimal
	UnitCost      *decimal.Decimal
	Notes         *string
}

type MarginReport struct {
	Margins    []LineMargin   `json:"margins"`
	ByQuote    []QuoteMargin  `json:"by_quote"`
	Summary    Summary        `json:"summary"`
	ByCategory []CategoryCost `json:"by_category"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (PurchaseOrder, error)
	Update(ctx context.Context, req UpdateRequest) (PurchaseOrder, error)
	// Issue moves a draft to issued and stamps IssuedAt; other statuses are left alone.
	Issue(ctx context.Context, id snowflake.ID) (PurchaseOrder, error)
	SetStatus(ctx context.Context, id snowflake.ID, status Status) (PurchaseOrder, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (PurchaseOrder, error)
	List(ctx context.Context, filter ListFilter) ([]LineMargin, error)
	MarginReport(ctx context.Context) (MarginReport, error)
}
