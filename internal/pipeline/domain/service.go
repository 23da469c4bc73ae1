package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salescloser/internal/config"
)

type AddDealRequest struct {
	Stage   StageID
	Name    string
	Company string
	Value   decimal.Decimal
	Note    string
}

type UpdateDealRequest struct {
	ID      snowflake.ID
	Name    *string
	Company *string
	Value   *decimal.Decimal
	Note    *string
}

type MoveDealRequest struct {
	ID   snowflake.ID
	From StageID
	To   StageID
}

type Service interface {
	Board(ctx context.Context) (Board, error)
	AddDeal(ctx context.Context, req AddDealRequest) (Deal, error)
	UpdateDeal(ctx context.Context, req UpdateDealRequest) (Deal, error)
	MoveDeal(ctx context.Context, req MoveDealRequest) (Deal, error)
	DeleteDeal(ctx context.Context, id snowflake.ID, stage StageID) error

	// SyncQuote reconciles one quote. A missing quote yields SyncActionNone.
	SyncQuote(ctx context.Context, quoteID snowflake.ID) (SyncResult, error)
	SyncAll(ctx context.Context) (SyncSummary, error)
	// ReleaseQuote applies the delete policy to the deals linked to a removed quote.
	ReleaseQuote(ctx context.Context, quoteID snowflake.ID, policy config.DeletePolicy) (int, error)
}
