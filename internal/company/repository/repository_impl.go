package repository

import (
	"context"

	"github.com/smallbiznis/salescloser/internal/company/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB) (*domain.Settings, error) {
	var settings domain.Settings
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, phone, email, website, home_jurisdiction, updated_at
		 FROM company_settings WHERE id = ?`,
		domain.SettingsID,
	).Scan(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.ID == 0 {
		return nil, nil
	}
	return &settings, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, settings *domain.Settings) error {
	settings.ID = domain.SettingsID
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(settings).Error
}
