package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-rentals/validation"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrRoomRequired = errors.New("room is required")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("already exists")
	ErrBadLogin     = errors.New("invalid credentials")
)

// ValidationError carries the per-field violations of a rejected input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field(s)", ErrValidation, len(e.Violations))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// SaveError reports a failed write. Cause is the database error.
type SaveError struct {
	Op    string
	Cause error
}

func (e *SaveError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Cause) }

func (e *SaveError) Unwrap() error { return e.Cause }

// notFound translates gorm's record-not-found into ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
