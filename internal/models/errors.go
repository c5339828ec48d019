package models

import (
	"errors"
	"fmt"
)

// StageError is the structured error every stage returns to its caller
// instead of raising an opaque fault. The code follows the HTTP-style
// result codes shared across stage boundaries.
type StageError struct {
	Code    int
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError builds a StageError without an underlying cause.
func NewStageError(code int, message string) *StageError {
	return &StageError{Code: code, Message: message}
}

// WrapStageError builds a StageError around an underlying cause.
func WrapStageError(code int, message string, err error) *StageError {
	return &StageError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the stage result code from an error chain. Errors
// that carry no StageError are treated as internal/unexpected.
func CodeOf(err error) int {
	var se *StageError
	if errors.As(err, &se) {
		return se.Code
	}
	return StatusInternal
}

// AsStageError normalizes any error into a StageError, defaulting the
// code to internal/unexpected.
func AsStageError(err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return &StageError{Code: StatusInternal, Message: "unexpected error", Err: err}
}
