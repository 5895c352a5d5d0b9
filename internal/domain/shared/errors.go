package shared

import (
	"errors"
	"fmt"
)

// Error categories. Typed errors across the domain packages match one of
// these through errors.Is so callers can classify failures.
var (
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation error")
	ErrNegativeAmount          = errors.New("negative amount")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrPartialExecutionFailure = errors.New("partial execution failure")
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field    string
	Reason   string
	negative bool
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.negative && target == ErrNegativeAmount
}
