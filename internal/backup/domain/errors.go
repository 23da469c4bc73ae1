package domain

import "errors"

var (
	ErrEmptySnapshot      = errors.New("empty_snapshot")
	ErrInvalidSnapshot    = errors.New("invalid_snapshot")
	ErrUnsupportedVersion = errors.New("unsupported_snapshot_version")
)
