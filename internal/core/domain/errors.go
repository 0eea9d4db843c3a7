package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrValidation indicates malformed input, such as a negative nutrient amount.
	// Recoverable: the caller should correct the input and retry.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoGoalSet indicates progress was requested for a period with no goal.
	// Distinct from ErrNotFound so callers can report "no goal for this query"
	// without implying the user is unknown.
	ErrNoGoalSet = errors.New("no goal set")

	// ErrStorageUnavailable indicates a transient backend failure or timeout.
	// Retryable by the caller with backoff.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConflict indicates a ledger correction targets an entry that has
	// already been superseded or is itself a void marker.
	ErrConflict = errors.New("conflict")
)

// ValidationError describes which field of a request was rejected and why.
// It unwraps to ErrValidation.
type ValidationError struct {
	// Field is the offending input, e.g. "nutrients.protein_g".
	Field string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ErrorKind classifies an error for presentation by driving adapters.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindNoGoalSet          ErrorKind = "no_goal_set"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
)

// Kind returns the ErrorKind for err. A nil error has an empty kind.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNoGoalSet):
		return KindNoGoalSet
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorageUnavailable
	default:
		return KindInternal
	}
}

// Retryable reports whether the caller may retry the failed request unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
