package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateClientRequest struct {
	Name         string
	Company      string
	Email        string
	Phone        string
	Address      string
	Jurisdiction string
	Notes        string
	Metadata     map[string]any
}

type UpdateClientRequest struct {
	ID           snowflake.ID
	Name         *string
	Company      *string
	Email        *string
	Phone        *string
	Address      *string
	Jurisdiction *string
	Notes        *string
	Metadata     map[string]any
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	Update(ctx context.Context, req UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (Client, error)
	// List matches search against name, company and email.
	List(ctx context.Context, search string) ([]Client, error)
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidJurisdiction = errors.New("invalid_jurisdiction")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
