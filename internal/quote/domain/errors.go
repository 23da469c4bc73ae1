package domain

import "errors"

var (
	ErrNotFound            = errors.New("not_found")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidCategory     = errors.New("invalid_category")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrClientNotFound      = errors.New("client_not_found")
)
