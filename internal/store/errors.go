package store

import (
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a
	// duplicate of a unique entity or unique pair.
	ErrDuplicate = errors.New("entity already exists")

	// ErrFieldCount is returned when a note's packed field count does
	// not match its model's field count.
	ErrFieldCount = errors.New("note field count does not match model")

	// ErrModelFrozen is returned for a non-additive model change while
	// notes exist against the model.
	ErrModelFrozen = errors.New("model is frozen while notes reference it")

	// Entity-specific "not found" errors

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = fmt.Errorf("%w: model", ErrNotFound)

	// ErrDeckNotFound indicates the requested deck does not exist.
	ErrDeckNotFound = fmt.Errorf("%w: deck", ErrNotFound)

	// ErrNoteNotFound indicates the requested note does not exist.
	ErrNoteNotFound = fmt.Errorf("%w: note", ErrNotFound)

	// ErrCardNotFound indicates the requested card does not exist.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)
)

// StoreError carries the entity and operation that failed alongside the
// underlying cause, so call sites can log one actionable message.
type StoreError struct {
	Entity string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap supports errors.Is/errors.As on the cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(entity, op string, err error) *StoreError {
	return &StoreError{Entity: entity, Op: op, Err: err}
}
