// Package errs defines the error taxonomy shared by the simulation
// engines: validation failures on registration or parameter updates,
// lookups of unregistered ids, and unrecognized enum values.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed field on a registration
// call or parameter update.
type ValidationError struct {
	Op     string // operation that rejected the input, e.g. "AddRobot"
	Field  string // offending field, e.g. "id"
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: invalid %s", e.Op, e.Field)
	}
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

// Validation returns a new *ValidationError.
func Validation(op, field, reason string) error {
	return &ValidationError{Op: op, Field: field, Reason: reason}
}

// NotFoundError reports an operation referencing an unregistered id.
type NotFoundError struct {
	Kind string // "robot", "joint", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NotFound returns a new *NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// UnsupportedError reports an unrecognized enum or type value.
type UnsupportedError struct {
	Kind  string
	Value string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s %q", e.Kind, e.Value)
}

// Unsupported returns a new *UnsupportedError.
func Unsupported(kind, value string) error {
	return &UnsupportedError{Kind: kind, Value: value}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}
