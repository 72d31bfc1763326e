// Package apperr defines the error kinds the core raises: validation
// failures, missing rows, and parent-chain cycles. The HTTP layer maps
// these to 4xx responses; nothing here is fatal to the process.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule violation caught before any mutation.
// Rule identifies which rule failed (e.g. "self_referential", "duplicate").
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Message)
}

// NotFoundError indicates a referenced id did not resolve to an existing
// row of the expected kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// CycleError is the ValidationError raised when a parent change would make
// a node its own ancestor. It unwraps to a ValidationError so callers that
// only distinguish validation from not-found keep working.
type CycleError struct {
	NodeID   string
	ParentID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("validation failed (cycle): setting parent of %s to %s would create a cycle", e.NodeID, e.ParentID)
}

func (e *CycleError) Unwrap() error {
	return &ValidationError{Rule: "cycle", Message: e.Error()}
}

// Validation builds a ValidationError.
func Validation(rule, format string, args ...interface{}) error {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsValidation reports whether err is (or wraps) a ValidationError,
// including CycleError.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ce *CycleError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsCycle reports whether err is (or wraps) a CycleError.
func IsCycle(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
