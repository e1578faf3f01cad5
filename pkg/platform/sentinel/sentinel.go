package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
// - ErrNotFound: row does not exist or is soft-deleted
// - ErrConflict: unique constraint or overlapping window
// - ErrReferenceMissing: a referenced row (foreign key) does not exist
// - ErrExpired: token has expired
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrReferenceMissing = errors.New("referenced record missing")
	ErrExpired          = errors.New("expired")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnavailable      = errors.New("unavailable")
)
