package database

import (
	"errors"

	"gorm.io/gorm"
)

// Storage error taxonomy. Repositories return these unchanged; the
// circulation and sync layers never swallow or re-map them.
var (
	// ErrNotFound is returned when a lookup by identifier matches nothing.
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation is returned when a write would collide with a
	// unique index (duplicate ISBN) or break the one-active-checkout rule.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidState is returned when a mutation is missing required input.
	ErrInvalidState = errors.New("invalid state")

	// ErrStorageUnavailable is returned when the local store failed to
	// initialize.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Translate maps gorm errors onto the storage taxonomy. Errors that are
// already part of the taxonomy, and unknown errors, pass through unchanged.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConstraintViolation
	default:
		return err
	}
}
