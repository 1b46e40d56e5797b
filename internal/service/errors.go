package service

import (
	"errors"
	"fmt"

	"carrental/internal/database"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("not authorized")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrUnavailable      = errors.New("car is not available")
	ErrInvalidState     = errors.New("booking cannot be changed in its current status")
	ErrConflict         = errors.New("booking was modified concurrently")
	ErrValidation       = errors.New("validation failed")
)

// translate maps store sentinels onto service errors. Anything else is wrapped with op.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, database.ErrNotAvailable):
		return ErrUnavailable
	case errors.Is(err, database.ErrConcurrentModification):
		return ErrConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
