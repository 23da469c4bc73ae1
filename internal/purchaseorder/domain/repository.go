package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status Status
	Search string
}

type Repository interface {
	NextSequence(ctx context.Context, db *gorm.DB) (int64, error)
	Insert(ctx context.Context, db *gorm.DB, po *PurchaseOrder) error
	Update(ctx context.Context, db *gorm.DB, po *PurchaseOrder) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PurchaseOrder, error)
	List(ctx context.Context, db *gorm.DB, status Status) ([]PurchaseOrder, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

// QuoteLineSource lists the quote lines purchase orders can point at.
type QuoteLineSource interface {
	QuoteLines(ctx context.Context, db *gorm.DB) ([]QuoteLineRef, error)
}
