package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// LoadAll fills every collection of the snapshot except the company.
	LoadAll(ctx context.Context, db *gorm.DB, snap *Snapshot) error
	// ReplaceAll wipes the local data and writes the snapshot. Run it in a transaction.
	ReplaceAll(ctx context.Context, db *gorm.DB, snap Snapshot) error
	InsertRecord(ctx context.Context, db *gorm.DB, record *Record) error
	ListRecords(ctx context.Context, db *gorm.DB, limit int) ([]Record, error)
	PruneRecords(ctx context.Context, db *gorm.DB, keep int) (int, error)
}
