package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxNotationLength bounds accepted notation input. Larger inputs are
// rejected before parsing.
const MaxNotationLength = 1 << 20

// ValidateNotationInput performs cheap safety checks on raw notation text
// before it reaches the parser.
//
// The validation rules are intentionally conservative:
//   - No empty input
//   - No control characters other than trailing newlines
//   - No null bytes
//   - Maximum length of MaxNotationLength bytes
//
// Grammar errors are reported separately by the notation parser.
func ValidateNotationInput(text string) error {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidInput, "notation cannot be empty")
	}

	if len(text) > MaxNotationLength {
		return New(ErrCodeInvalidInput, "notation too long (max %d bytes)", MaxNotationLength)
	}

	for i, r := range text {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "notation contains control character at byte %d", i)
		}
	}

	return nil
}

// polymerIDRegex matches polymer identifiers such as PEPTIDE1, RNA2, CHEM1.
var polymerIDRegex = regexp.MustCompile(`^(PEPTIDE|RNA|CHEM)[1-9][0-9]*$`)

// ValidatePolymerID validates a polymer identifier.
func ValidatePolymerID(id string) error {
	if !polymerIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid polymer id: %q", id)
	}
	return nil
}

// symbolRegex matches monomer symbols as they appear inside brackets.
var symbolRegex = regexp.MustCompile(`^[A-Za-z0-9_\-*']{1,64}$`)

// ValidateSymbol validates a monomer symbol.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return New(ErrCodeInvalidInput, "monomer symbol cannot be empty")
	}
	if !symbolRegex.MatchString(symbol) {
		return New(ErrCodeInvalidInput, "invalid monomer symbol: %q", symbol)
	}
	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}

	return nil
}
