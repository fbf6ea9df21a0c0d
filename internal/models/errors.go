package models

import (
	"errors"
	"fmt"
)

// Workflow errors reported to creation callers.
var (
	// ErrProbeFailed indicates the media probe collaborator could not
	// read, open, or analyze the source. Not retried by the core.
	ErrProbeFailed = errors.New("media probe failed")

	// ErrProfileNotFound indicates classification yielded no delivery
	// profile and no healing applied. The source is ineligible for
	// delivery and the workflow aborts.
	ErrProfileNotFound = errors.New("no matching delivery profile")

	// ErrSequenceExhausted indicates the sequence counter row for the
	// requested namespace is missing or unreadable. Fatal to the
	// allocation attempt, not to the process.
	ErrSequenceExhausted = errors.New("sequence counter unavailable")

	// ErrResourceNotFound indicates no persisted row exists for the
	// requested resource id.
	ErrResourceNotFound = errors.New("resource not found")
)

// Validation errors for resource fields.
var (
	ErrLocatorRequired     = errors.New("locator is required")
	ErrInvalidResourceType = errors.New("invalid resource type: must be 'channel', 'recording' or 'file'")
	ErrInvalidTimerAction  = errors.New("invalid record timer action")
	ErrInvalidResolution   = errors.New("invalid resolution: must be '<width>x<height>' with no leading zeros")
)

// StoreError reports a failed operation against the backing store with
// enough context to log. The wrapped transaction has been rolled back;
// callers decide whether to retry the whole workflow.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps a backing-store failure with its operation name.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
