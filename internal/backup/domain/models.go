package domain

import (
	"time"

	clientdomain "github.com/smallbiznis/salescloser/internal/client/domain"
	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	podomain "github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
)

const (
	Format  = "salescloser.snapshot"
	Version = 1

	// RecordsKept bounds the backup history.
	RecordsKept = 50
)

// Snapshot is the full portable copy of the local data.
type Snapshot struct {
	Format         string                   `json:"format"`
	Version        int                      `json:"version"`
	ID             string                   `json:"id"`
	ExportedAt     time.Time                `json:"exported_at"`
	Company        companydomain.Settings   `json:"company"`
	Clients        []clientdomain.Client    `json:"clients"`
	Quotes         []quotedomain.Quote      `json:"quotes"`
	Deals          []pipelinedomain.Deal    `json:"deals"`
	PurchaseOrders []podomain.PurchaseOrder `json:"purchase_orders"`
}

type Method string

const (
	MethodExport Method = "export"
	MethodImport Method = "import"
)

// Record is one line of the backup history.
type Record struct {
	ID         string    `gorm:"type:varchar(26);primaryKey" json:"id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	Method     Method    `gorm:"type:varchar(16);not null" json:"method"`
	SizeBytes  int64     `gorm:"not null" json:"size_bytes"`
	Compressed bool      `gorm:"not null" json:"compressed"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (Record) TableName() string { return "backup_records" }

type ExportOptions struct {
	Compress bool
	FileName string
}

type ImportResult struct {
	Record         Record                     `json:"record"`
	SnapshotID     string                     `json:"snapshot_id"`
	Clients        int                        `json:"clients"`
	Quotes         int                        `json:"quotes"`
	Deals          int                        `json:"deals"`
	PurchaseOrders int                        `json:"purchase_orders"`
	Sync           pipelinedomain.SyncSummary `json:"sync"`
}
