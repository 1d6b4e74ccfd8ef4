package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for retrieval and store failures.
var (
	// ErrDimensionMismatch means a query vector's dimensionality disagrees
	// with the store it was searched against.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrCorruptStore means a store's index and metadata artifacts disagree.
	ErrCorruptStore = errors.New("corrupt embedding store")
	// ErrInvalidTopicID means an image filename does not carry a parseable
	// topic identifier prefix.
	ErrInvalidTopicID = errors.New("invalid topic id")
	ErrEmptyQuestion  = errors.New("question is empty")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }
