package repository

import (
	"context"

	"github.com/smallbiznis/salescloser/internal/backup/domain"
	clientdomain "github.com/smallbiznis/salescloser/internal/client/domain"
	companydomain "github.com/smallbiznis/salescloser/internal/company/domain"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	podomain "github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatch = 200

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LoadAll(ctx context.Context, db *gorm.DB, snap *domain.Snapshot) error {
	conn := db.WithContext(ctx)

	if err := conn.Order("name ASC, id ASC").Find(&snap.Clients).Error; err != nil {
		return err
	}
	err := conn.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("sequence ASC").
		Find(&snap.Quotes).Error
	if err != nil {
		return err
	}
	if err := conn.Order("stage, position, id").Find(&snap.Deals).Error; err != nil {
		return err
	}
	return conn.Order("sequence ASC").Find(&snap.PurchaseOrders).Error
}

func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, snap domain.Snapshot) error {
	conn := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})

	wipe := []any{
		&pipelinedomain.Deal{},
		&podomain.PurchaseOrder{},
		&quotedomain.Line{},
		&quotedomain.Quote{},
		&clientdomain.Client{},
	}
	for _, model := range wipe {
		if err := conn.Delete(model).Error; err != nil {
			return err
		}
	}

	company := snap.Company
	company.ID = companydomain.SettingsID
	if err := conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(&company).Error; err != nil {
		return err
	}

	if len(snap.Clients) > 0 {
		if err := conn.CreateInBatches(snap.Clients, insertBatch).Error; err != nil {
			return err
		}
	}
	if len(snap.Quotes) > 0 {
		if err := conn.CreateInBatches(snap.Quotes, insertBatch).Error; err != nil {
			return err
		}
	}
	if len(snap.Deals) > 0 {
		if err := conn.CreateInBatches(snap.Deals, insertBatch).Error; err != nil {
			return err
		}
	}
	if len(snap.PurchaseOrders) > 0 {
		if err := conn.CreateInBatches(snap.PurchaseOrders, insertBatch).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) InsertRecord(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) ListRecords(ctx context.Context, db *gorm.DB, limit int) ([]domain.Record, error) {
	stmt := db.WithContext(ctx).Model(&domain.Record{}).Order("created_at DESC, id DESC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var records []domain.Record
	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) PruneRecords(ctx context.Context, db *gorm.DB, keep int) (int, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Record{}).
		Order("created_at DESC, id DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) <= keep {
		return 0, nil
	}

	res := db.WithContext(ctx).Where("id IN ?", ids[keep:]).Delete(&domain.Record{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
