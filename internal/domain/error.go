package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrOperationFailed    = errors.New("database operation failed")

	// Promo code errors
	ErrCodeRequired    = errors.New("code is required")
	ErrCodeNotFound    = errors.New("promo code not found")
	ErrCodeCannotUse   = errors.New("promo code cannot be used")
	ErrDuplicateCode   = errors.New("promo code already exists")
	ErrUnknownAction   = errors.New("unknown promo code action")
	ErrInvalidWindow   = errors.New("valid_until must be after valid_from")
	ErrValidFromInPast = errors.New("valid_from must not be in the past")
	ErrInvalidMaxUses  = errors.New("max_uses must be at least 1")
	ErrInvalidCode     = errors.New("code must contain only letters and digits")
	ErrUnknownCreator  = errors.New("created_by does not reference a known user")

	// Infrastructure errors
	ErrLockTimeout = errors.New("timed out waiting for promo code lock")
)

// Reasons attached to ValidationError. They are also the strings written to
// the usage ledger and returned to API clients.
const (
	ReasonInvalidInput = "invalid_input"
	ReasonNotFound     = "not_found"
	ReasonCannotUse    = "cannot_use"
)

// ValidationError is an expected business or input failure. Its message is
// safe to show to end users.
type ValidationError struct {
	Reason string
	Err    error
}

func NewValidationError(reason string, err error) *ValidationError {
	return &ValidationError{Reason: reason, Err: err}
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// InfraError wraps storage, lock and collaborator failures. The wrapped error
// is for logs only.
type InfraError struct {
	Op  string
	Err error
}

func NewInfraError(op string, err error) *InfraError {
	return &InfraError{Op: op, Err: err}
}

func (e *InfraError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *InfraError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsInfra reports whether err is an infrastructure failure.
func IsInfra(err error) bool {
	var ie *InfraError
	return errors.As(err, &ie)
}
