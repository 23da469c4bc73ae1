package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/purchaseorder/domain"
	"github.com/smallbiznis/salescloser/pkg/db"
	"gorm.io/gorm"
)

const sequenceName = "purchase_orders"

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) NextSequence(ctx context.Context, conn *gorm.DB) (int64, error) {
	var inUse int64
	err := conn.WithContext(ctx).
		Raw(`SELECT COALESCE(MAX(sequence), 0) FROM purchase_orders`).
		Scan(&inUse).Error
	if err != nil {
		return 0, err
	}
	return db.NextValue(ctx, conn, sequenceName, inUse)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, po *domain.PurchaseOrder) error {
	return db.WithContext(ctx).Create(po).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, po *domain.PurchaseOrder) error {
	return db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", po.ID).
		Updates(map[string]any{
			"vendor":          po.Vendor,
			"vendor_contact":  po.VendorContact,
			"ship_to_address": po.ShipToAddress,
			"description":     po.Description,
			"quantity":        po.Quantity,
			"unit_cost":       po.UnitCost,
			"status":          po.Status,
			"notes":           po.Notes,
			"issued_at":       po.IssuedAt,
			"updated_at":      po.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&po).Error
	if err != nil {
		return nil, err
	}
	if po.ID == 0 {
		return nil, nil
	}
	return &po, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status domain.Status) ([]domain.PurchaseOrder, error) {
	stmt := db.WithContext(ctx).Model(&domain.PurchaseOrder{})
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var orders []domain.PurchaseOrder
	if err := stmt.Order("sequence DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.PurchaseOrder{}).Error
}
