package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/quote/domain"
	"github.com/smallbiznis/salescloser/pkg/db"
	"gorm.io/gorm"
)

const sequenceName = "quotes"

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *repo) NextSequence(ctx context.Context, conn *gorm.DB) (int64, error) {
	var inUse int64
	err := conn.WithContext(ctx).
		Raw(`SELECT COALESCE(MAX(sequence), 0) FROM quotes`).
		Scan(&inUse).Error
	if err != nil {
		return 0, err
	}
	return db.NextValue(ctx, conn, sequenceName, inUse)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Create(quote).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Quote{}).
			Where("id = ?", quote.ID).
			Updates(map[string]any{
				"client_id":    quote.ClientID,
				"client_name":  quote.ClientName,
				"client_email": quote.ClientEmail,
				"client_phone": quote.ClientPhone,
				"jurisdiction": quote.Jurisdiction,
				"status":       quote.Status,
				"notes":        quote.Notes,
				"subtotal":     quote.Subtotal,
				"tax":          quote.Tax,
				"total":        quote.Total,
				"updated_at":   quote.UpdatedAt,
			}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("quote_id = ?", quote.ID).Delete(&domain.Line{}).Error; err != nil {
			return err
		}
		if len(quote.Lines) == 0 {
			return nil
		}
		return tx.Create(&quote.Lines).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Quote, error) {
	return r.findOne(ctx, db, "number = ?", strings.ToUpper(strings.TrimSpace(number)))
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where(query, arg).
		Limit(1).
		Find(&quote).Error
	if err != nil {
		return nil, err
	}
	if quote.ID == 0 {
		return nil, nil
	}
	return &quote, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Quote, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Preload("Lines", orderedLines)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("LOWER(number) LIKE ? OR LOWER(client_name) LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var quotes []domain.Quote
	if err := stmt.Order("created_at DESC").Order("sequence DESC").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, quoteIDs []snowflake.ID) ([]domain.Line, error) {
	stmt := db.WithContext(ctx).Model(&domain.Line{})
	if len(quoteIDs) > 0 {
		stmt = stmt.Where("quote_id IN ?", quoteIDs)
	}

	var lines []domain.Line
	if err := stmt.Order("quote_id, position").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&domain.Line{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Quote{}).Error
	})
}
