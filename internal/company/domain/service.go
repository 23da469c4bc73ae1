package domain

import (
	"context"
	"errors"
)

type UpdateSettingsRequest struct {
	Name             *string
	Address          *string
	Phone            *string
	Email            *string
	Website          *string
	HomeJurisdiction *string
}

type Service interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (Settings, error)
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidJurisdiction = errors.New("invalid_jurisdiction")
)
