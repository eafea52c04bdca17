package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable indicates a transport or connection failure on a
	// single backend store.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrQueryRejected indicates that a backend refused a query, usually
	// because of malformed filter input.
	ErrQueryRejected = errors.New("query rejected")

	// ErrMalformedResult indicates that a backend returned a result that
	// could not be decoded or grouped.
	ErrMalformedResult = errors.New("malformed result")

	// ErrNoIdentifier indicates that a journal row has no usable identifier.
	ErrNoIdentifier = errors.New("no identifier")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// SourceError describes a failed read operation on one backend source.
// Kind is one of ErrBackendUnavailable, ErrQueryRejected or ErrMalformedResult.
type SourceError struct {
	Source    string
	Operation string
	Kind      error
	Cause     error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s %s: %v", e.Source, e.Operation, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Source, e.Operation, e.Kind, e.Cause)
}

// Unwrap exposes both the classification sentinel and the cause.
func (e *SourceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewBackendUnavailableError wraps a transport failure of a source.
func NewBackendUnavailableError(source, operation string, cause error) *SourceError {
	return &SourceError{Source: source, Operation: operation, Kind: ErrBackendUnavailable, Cause: cause}
}

// NewQueryRejectedError wraps a rejected query of a source.
func NewQueryRejectedError(source, operation string, cause error) *SourceError {
	return &SourceError{Source: source, Operation: operation, Kind: ErrQueryRejected, Cause: cause}
}

// NewMalformedResultError wraps an undecodable result of a source.
func NewMalformedResultError(source, operation string, cause error) *SourceError {
	return &SourceError{Source: source, Operation: operation, Kind: ErrMalformedResult, Cause: cause}
}

// FailureReason returns a short label classifying err, for logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, ErrQueryRejected):
		return "query_rejected"
	case errors.Is(err, ErrMalformedResult):
		return "malformed_result"
	default:
		return "unknown"
	}
}
