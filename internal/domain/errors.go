package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the domain matches exactly one of these
// through errors.Is so adapters can map failures without knowing concrete types.
var (
	ErrValidation      = errors.New("validation failed")
	ErrBusinessRule    = errors.New("business rule violated")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("state conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// FormatError reports a value object that could not be constructed from raw input.
type FormatError struct {
	Field  string
	Reason string
}

// NewFormatError builds a FormatError for the given field.
func NewFormatError(field, reason string) *FormatError {
	return &FormatError{Field: field, Reason: reason}
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrValidation }

// RuleViolation is raised when a business rule is not satisfied.
type RuleViolation struct {
	Message string
	Code    int
}

func (e *RuleViolation) Error() string {
	return fmt.Sprintf("business rule %03d: %s", e.Code, e.Message)
}

func (e *RuleViolation) Is(target error) bool { return target == ErrBusinessRule }

// NotFoundError names the resource that could not be located.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a transition refused because of the aggregate's current state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
