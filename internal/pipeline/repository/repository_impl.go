package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Order("stage, position, created_at, id").
		Find(&deals).Error
	if err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Deal, error) {
	var deal domain.Deal
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&deal).Error
	if err != nil {
		return nil, err
	}
	if deal.ID == 0 {
		return nil, nil
	}
	return &deal, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).Create(deal).Error
}

func (r *repo) UpdateSynced(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ?", deal.ID).
		Updates(map[string]any{
			"stage":        deal.Stage,
			"position":     deal.Position,
			"name":         deal.Name,
			"company":      deal.Company,
			"value":        deal.Value,
			"quote_number": deal.QuoteNumber,
			"moved_at":     deal.MovedAt,
		}).Error
}

func (r *repo) UpdateDetails(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ?", deal.ID).
		Updates(map[string]any{
			"name":    deal.Name,
			"company": deal.Company,
			"value":   deal.Value,
			"note":    deal.Note,
		}).Error
}

func (r *repo) UpdatePlacement(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ?", deal.ID).
		Updates(map[string]any{
			"stage":    deal.Stage,
			"position": deal.Position,
			"moved_at": deal.MovedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM deals WHERE id = ?`, id).Error
}

func (r *repo) DeleteByQuote(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM deals WHERE quote_id = ?`, quoteID)
	return res.RowsAffected, res.Error
}
