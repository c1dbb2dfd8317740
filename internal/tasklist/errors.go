package tasklist

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid task")
	ErrFetch      = errors.New("store request failed")
)

// ValidationError reports bad input caught before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FetchError wraps any failure of a store operation: transport errors and
// non-success responses alike.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }
