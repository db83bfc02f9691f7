// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "fmt"

// ErrorCategory classifies command errors so scripts can tell bad input
// from a missing file from a bug without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation: bad flags or unparseable values. Fix the
	// input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced file does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryInternal: an unexpected failure such as an I/O error.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error with an optional hint for the user.
// It wraps the inner error so errors.Is and errors.As see through it.
type ToolError struct {
	Category ErrorCategory
	Err      error
	Hint     string
}

// Error returns the message, followed by the hint after a blank line
// when one is set.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced file does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
