package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]Deal, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Deal, error)
	Insert(ctx context.Context, db *gorm.DB, deal *Deal) error
	// UpdateSynced writes placement and the quote-owned fields; note is never touched.
	UpdateSynced(ctx context.Context, db *gorm.DB, deal *Deal) error
	UpdateDetails(ctx context.Context, db *gorm.DB, deal *Deal) error
	UpdatePlacement(ctx context.Context, db *gorm.DB, deal *Deal) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DeleteByQuote(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (int64, error)
}

// QuoteSource reads quotes for reconciliation. It takes the caller's handle
// so reads join the surrounding transaction.
type QuoteSource interface {
	QuoteSnapshot(ctx context.Context, db *gorm.DB, id snowflake.ID) (*QuoteSnapshot, error)
	QuoteSnapshots(ctx context.Context, db *gorm.DB) ([]QuoteSnapshot, error)
}
