package domain

import "errors"

var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidStage  = errors.New("invalid_stage")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidValue  = errors.New("invalid_value")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidPolicy = errors.New("invalid_delete_policy")
)
