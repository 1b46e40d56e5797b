package database

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotAvailable is returned when a car is already held by another booking.
	ErrNotAvailable = errors.New("car is not available")
	// ErrConcurrentModification is returned when a versioned update lost the race.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrDuplicate is returned on a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)
