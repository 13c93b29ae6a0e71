package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	if err.Node != NoHandle || err.Edge != NoHandle {
		t.Errorf("handles = (%d, %d), want (%d, %d)", err.Node, err.Edge, NoHandle, NoHandle)
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, cause, "failed to read")

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInternal)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestSyntax(t *testing.T) {
	err := Syntax("PEPTIDE1{A", "unterminated polymer")

	if err.Code != ErrCodeNotationSyntax {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNotationSyntax)
	}
	if err.Fragment != "PEPTIDE1{A" {
		t.Errorf("Fragment = %q, want %q", err.Fragment, "PEPTIDE1{A")
	}

	expected := `NOTATION_SYNTAX: unterminated polymer (near "PEPTIDE1{A")`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestHandles(t *testing.T) {
	err := Invariant("pair between %s and %s", "sugar", "base").WithNode(3).WithEdge(7)

	if err.Code != ErrCodeStructuralInvariant {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStructuralInvariant)
	}
	if err.Node != 3 || err.Edge != 7 {
		t.Errorf("handles = (%d, %d), want (3, 7)", err.Node, err.Edge)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNotFound,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeStructuralInvariant, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeStructuralInvariant,
			expected: true,
		},
		{
			name:     "unresolved monomer",
			err:      Unresolved("PEPTIDE", "Xyz"),
			code:     ErrCodeUnresolvedMonomer,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeLayoutUnsupportedMotif, "test"),
			expected: ErrCodeLayoutUnsupportedMotif,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "with fragment",
			err:      Syntax("{A", "missing polymer id"),
			expected: `missing polymer id (near "{A")`,
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
