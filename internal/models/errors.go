package models

import (
	"errors"
	"fmt"
)

// ValidationError indicates a field with a bad shape or range. The
// entity is not persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError indicates a duplicate unique key (bucket name, entry
// name, node id). The message is domain specific, never the raw
// storage error.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}

// NewConflictError creates a conflict error for a resource and key
func NewConflictError(resource, key string) error {
	return &ConflictError{Resource: resource, Key: key}
}

// InvariantViolation indicates a broken accounting rule. Rejected
// before persistence.
type InvariantViolation struct {
	Rule string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Rule)
}

// NewInvariantViolation creates an invariant violation error
func NewInvariantViolation(rule string) error {
	return &InvariantViolation{Rule: rule}
}

// NotFoundError indicates a referenced entity is missing at write time
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NewNotFoundError creates a not found error for a resource and key
func NewNotFoundError(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsInvariant reports whether err is an InvariantViolation
func IsInvariant(err error) bool {
	var i *InvariantViolation
	return errors.As(err, &i)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
