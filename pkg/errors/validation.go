package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDiagramBytes bounds the size of a single diagram text accepted by
// ValidateDiagramText. Larger inputs are rejected before classification.
const MaxDiagramBytes = 1 << 20

// ValidateDiagramText validates raw diagram text before it is classified.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only input
//   - Valid UTF-8
//   - No null bytes
//   - Maximum size of MaxDiagramBytes
func ValidateDiagramText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeEmptyInput, "diagram text cannot be empty")
	}

	if len(text) > MaxDiagramBytes {
		return New(ErrCodeInvalidInput, "diagram text too large (max %d bytes)", MaxDiagramBytes)
	}

	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidInput, "diagram text is not valid UTF-8")
	}

	if strings.ContainsRune(text, '\x00') {
		return New(ErrCodeInvalidInput, "diagram text contains null bytes")
	}

	return nil
}

// ValidateName validates an element name (class, entity, participant) for
// use as a lookup key by adapters.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name %q contains control characters", name)
		}
	}

	return nil
}

// ValidatePath validates an output file path supplied by a caller.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
