package services

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range input (bad path
// characters, level outside 1..4, empty required field). It carries
// enough context for the operator to correct and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports a duplicate rule path within a section.
type ConflictError struct {
	Path      string
	SectionID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a rule with path %q already exists in this section", e.Path)
}

// NotFoundError reports an operation on a record that no longer
// exists. Deletes treat it as idempotent success; updates surface it.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
