package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a uniqueness
	// constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when a write violates a foreign key,
	// check, or not-null constraint. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidSort is returned when a listing asks to sort on a column
	// the store does not expose.
	ErrInvalidSort = errors.New("invalid sort field")

	// ErrHotelNotFound indicates the hotel does not exist within the event.
	ErrHotelNotFound = fmt.Errorf("%w: hotel", ErrNotFound)
)

// StoreError adds the entity and operation to an underlying store error.
type StoreError struct {
	Entity    string // e.g. "hotel", "log"
	Operation string // e.g. "create", "update"
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation on %s failed: %v", e.Operation, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the entity and operation that produced it.
// It returns nil when err is nil.
func NewStoreError(entity, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Entity: entity, Operation: operation, Err: err}
}
