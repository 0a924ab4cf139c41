package errors

import (
	"strings"
	"unicode"
)

const (
	// MaxNameLength is the widest container name a manifest line can carry.
	MaxNameLength = 256

	// MaxWeight is the largest weight representable in the five-digit
	// manifest weight field.
	MaxWeight = 99999
)

// reservedNames are manifest markers that can never name a real container.
var reservedNames = map[string]bool{
	"NAN":    true,
	"UNUSED": true,
}

// ValidateContainerName validates a container name taken from a request.
//
// Validation rules:
//   - No empty or whitespace-only names
//   - No control characters (a manifest line is a single line)
//   - No reserved manifest markers (NAN, UNUSED)
//   - Maximum length of MaxNameLength characters
func ValidateContainerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidRequest, "container name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidRequest, "container name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRequest, "container name contains invalid control characters")
		}
	}

	if reservedNames[strings.ToUpper(name)] {
		return New(ErrCodeInvalidRequest, "container name %q is reserved", name)
	}

	return nil
}

// ValidateWeight validates a container weight in kilograms.
func ValidateWeight(weight int) error {
	if weight < 0 {
		return New(ErrCodeInvalidRequest, "weight cannot be negative: %d", weight)
	}
	if weight > MaxWeight {
		return New(ErrCodeInvalidRequest, "weight %d exceeds manifest limit %d", weight, MaxWeight)
	}
	return nil
}

// ValidateManifestPath validates a manifest path given on the command line
// or in an API request. Only plain .txt manifests are accepted.
func ValidateManifestPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "manifest path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "manifest path contains invalid characters")
		}
	}

	if !strings.HasSuffix(strings.ToLower(path), ".txt") {
		return New(ErrCodeInvalidInput, "manifest must be a .txt file: %q", path)
	}

	return nil
}
