package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a domain error for callers and for HTTP mapping.
type ErrorKind string

const (
	KindValidation  ErrorKind = "VALIDATION"
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindConflict    ErrorKind = "CONFLICT"
	KindUnavailable ErrorKind = "UNAVAILABLE"
	KindUnknown     ErrorKind = ""
)

// DomainError is a classified error with an optional per-field reason map.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Reasons map[string]string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithReason attaches a field-level explanation, e.g. "email" -> "already used".
func (e *DomainError) WithReason(field, reason string) *DomainError {
	if e.Reasons == nil {
		e.Reasons = make(map[string]string)
	}
	e.Reasons[field] = reason
	return e
}

// NewValidationError reports malformed input or a violated constraint.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports that a referenced entity does not exist.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

// NewConflictError reports a uniqueness or state collision.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewUnavailableError reports that a remote dependency failed, timed out or was unreachable.
func NewUnavailableError(message string, cause error) *DomainError {
	return &DomainError{Kind: KindUnavailable, Message: message, Err: cause}
}

// KindOf returns the classification of the first DomainError in err's chain.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool    { return KindOf(err) == KindConflict }
func IsUnavailable(err error) bool { return KindOf(err) == KindUnavailable }

// CompensationFailure records one undo action that could not be completed.
type CompensationFailure struct {
	Step       string
	ResourceID string
	Err        error
}

// PartialFailureError is returned when a saga step failed and at least one
// compensation also failed, leaving resources behind in downstream systems.
type PartialFailureError struct {
	Cause  error
	Failed []CompensationFailure
}

func (e *PartialFailureError) Error() string {
	steps := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		steps[i] = f.Step
	}
	return fmt.Sprintf("partial failure: %v (compensation failed for: %s)", e.Cause, strings.Join(steps, ", "))
}

// Unwrap exposes the triggering error.
func (e *PartialFailureError) Unwrap() error {
	return e.Cause
}

// AsPartialFailure extracts a PartialFailureError from err's chain.
func AsPartialFailure(err error) (*PartialFailureError, bool) {
	var pf *PartialFailureError
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}
