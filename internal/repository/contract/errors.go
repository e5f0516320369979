package contract

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("requester does not own this record")
	// ErrCapabilityFailure marks a query the backend cannot serve natively (missing composite
	// index, unsupported operator, planner limit). The executor recovers from it with a scan.
	ErrCapabilityFailure = errors.New("query not servable natively")
	ErrBackendFault      = errors.New("backend fault")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func CapabilityFailure(reason string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrCapabilityFailure, reason)
	}
	return fmt.Errorf("%w: %s: %w", ErrCapabilityFailure, reason, cause)
}

// BackendFault wraps an unexpected storage error. Already classified errors pass through.
func BackendFault(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBackendFault) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCapabilityFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrBackendFault, op, err)
}
