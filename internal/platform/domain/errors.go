package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so the HTTP edge can map them to status
// codes without inspecting error strings.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindInvalidState
	KindConflict
	KindForbidden
	KindUnauthorized
)

// DomainError is the common error type returned by domain and application code.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates an error for rejected input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewInvalidStateError creates an error for a disallowed state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewConflictError creates an error for a lost optimistic-concurrency race.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for an operation the caller may not perform.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError creates an error for a missing or invalid identity.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Message: message}
}

// KindOf returns the ErrorKind of err, or ok=false if err is not a DomainError.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
