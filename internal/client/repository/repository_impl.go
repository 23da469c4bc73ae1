package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/client/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (id, name, company, email, phone, address, jurisdiction, notes, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.Name,
		client.Company,
		client.Email,
		client.Phone,
		client.Address,
		client.Jurisdiction,
		client.Notes,
		client.Metadata,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET name = ?, company = ?, email = ?, phone = ?, address = ?,
		 jurisdiction = ?, notes = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		client.Name,
		client.Company,
		client.Email,
		client.Phone,
		client.Address,
		client.Jurisdiction,
		client.Notes,
		client.Metadata,
		client.UpdatedAt,
		client.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, company, email, phone, address, jurisdiction, notes, metadata, created_at, updated_at
		 FROM clients WHERE id = ?`,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, search string) ([]domain.Client, error) {
	stmt := db.WithContext(ctx).Model(&domain.Client{})
	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var clients []domain.Client
	if err := stmt.Order("name ASC, id ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Client{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM clients WHERE id = ?`, id).Error
}
