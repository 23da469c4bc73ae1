package domain

import "errors"

var (
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidVendor   = errors.New("invalid_vendor")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidCost     = errors.New("invalid_cost")
	ErrLineNotFound    = errors.New("quote_line_not_found")
)
