package domain

import "errors"

var (
	ErrEmptyTable              = errors.New("empty_tax_table")
	ErrInvalidJurisdictionCode = errors.New("invalid_jurisdiction_code")
	ErrDuplicateJurisdiction   = errors.New("duplicate_jurisdiction")
	ErrInvalidTaxRate          = errors.New("invalid_tax_rate")
	ErrUnknownJurisdiction     = errors.New("unknown_jurisdiction")
	ErrInvalidCategory         = errors.New("invalid_category")
)
