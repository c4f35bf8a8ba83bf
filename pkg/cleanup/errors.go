package cleanup

import (
	"errors"
	"fmt"
)

// Engine error types for categorization.
var (
	// ErrUnrecoverable marks rule failures that abort the whole project.
	ErrUnrecoverable = errors.New("unrecoverable clean up failure")

	// ErrCancelled indicates the run was cancelled between passes or batches.
	ErrCancelled = errors.New("clean up cancelled")

	// ErrParseFailure indicates a parsing error.
	ErrParseFailure = errors.New("parse failure")

	// ErrStaleSnapshot indicates a change was replayed on text it was not
	// computed against.
	ErrStaleSnapshot = errors.New("content does not match change snapshot")

	// ErrDuplicateDocument indicates two documents of one run share an ID.
	ErrDuplicateDocument = errors.New("duplicate document ID")
)

// RuleError records a rule that failed while computing a fix.
type RuleError struct {
	RuleID     string
	DocumentID string
	Err        error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s on %s: %v", e.RuleID, e.DocumentID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// ParseError records a document the parser could not handle.
type ParseError struct {
	DocumentID string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.DocumentID, e.Err)
}

// Unwrap returns both ErrParseFailure and the underlying error, so
// errors.Is matches either.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParseFailure, e.Err}
}
