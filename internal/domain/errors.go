package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrVersionConflict = errors.New("record was modified concurrently")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError names the missing entity; errors.Is(err, ErrNotFound) holds.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return "No " + e.Entity + " found with ID: " + e.ID
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
