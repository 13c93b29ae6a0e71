// Package errors provides structured error types for helmdraw.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Precise context (notation fragment, node or edge handle) for callers
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The structural codes mirror the failure taxonomy of the editor core:
//   - NOTATION_SYNTAX: malformed notation text (carries the fragment)
//   - UNRESOLVED_MONOMER: symbol missing from the monomer database
//   - STRUCTURAL_INVARIANT: an edit or parse would break graph invariants
//   - LAYOUT_UNSUPPORTED_MOTIF: graph shape matches no known motif
//
// # Usage
//
//	err := errors.Syntax("PEPTIDE1{A.G", "unterminated polymer")
//	if errors.Is(err, errors.ErrCodeNotationSyntax) {
//	    // Show err.(*errors.Error).Fragment to the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "failed to read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Notation and monomer resolution
	ErrCodeNotationSyntax    Code = "NOTATION_SYNTAX"
	ErrCodeUnresolvedMonomer Code = "UNRESOLVED_MONOMER"

	// Graph invariants and layout
	ErrCodeStructuralInvariant    Code = "STRUCTURAL_INVARIANT"
	ErrCodeLayoutUnsupportedMotif Code = "LAYOUT_UNSUPPORTED_MOTIF"
	ErrCodeLayoutOverlap          Code = "LAYOUT_OVERLAP"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// NoHandle marks an Error that does not refer to a node or edge.
const NoHandle = -1

// Error is a structured error with a code and optional cause.
type Error struct {
	Code     Code   // Machine-readable error code
	Message  string // Human-readable message
	Cause    error  // Underlying error (optional)
	Fragment string // Offending notation fragment (optional)
	Node     int    // Node handle involved, or NoHandle
	Edge     int    // Edge handle involved, or NoHandle
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Fragment != "" {
		msg += fmt.Sprintf(" (near %q)", e.Fragment)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithNode records the node handle the error refers to.
func (e *Error) WithNode(id int) *Error {
	e.Node = id
	return e
}

// WithEdge records the edge handle the error refers to.
func (e *Error) WithEdge(id int) *Error {
	e.Edge = id
	return e
}

// WithFragment records the notation fragment the error refers to.
func (e *Error) WithFragment(fragment string) *Error {
	e.Fragment = fragment
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Node:    NoHandle,
		Edge:    NoHandle,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Syntax creates a NOTATION_SYNTAX error carrying the offending fragment.
func Syntax(fragment, format string, args ...any) *Error {
	return New(ErrCodeNotationSyntax, format, args...).WithFragment(fragment)
}

// Unresolved creates an UNRESOLVED_MONOMER error for symbol in polymer type.
func Unresolved(polymer, symbol string) *Error {
	return New(ErrCodeUnresolvedMonomer, "unknown %s monomer %q", polymer, symbol).WithFragment(symbol)
}

// Invariant creates a STRUCTURAL_INVARIANT error.
func Invariant(format string, args ...any) *Error {
	return New(ErrCodeStructuralInvariant, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// As is a thin re-export of the standard library's errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Fragment != "" {
			return fmt.Sprintf("%s (near %q)", e.Message, e.Fragment)
		}
		return e.Message
	}
	return err.Error()
}
