package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateEntityName validates the display name of an entity.
//
// The validation rules are intentionally conservative:
//   - No empty or blank names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateEntityName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidTree, "entity name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidTree, "entity name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTree, "entity name contains invalid control characters")
		}
	}

	return nil
}

// ValidateFinite rejects NaN and infinite configuration values.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be a finite number", field)
	}
	return nil
}

// idRegex matches identifiers safe to use as file names.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateID validates a map or snapshot identifier. Identifiers end up in
// file names and cache keys, so path separators and dots are rejected.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid id: %q", id)
	}
	return nil
}

// ValidatePath rejects empty, over-long and control-character file paths,
// which usually come from a broken shell substitution.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d bytes)", maxPathLength)
	}
	if strings.ContainsFunc(path, unicode.IsControl) {
		return New(ErrCodeInvalidPath, "path %q contains control characters", path)
	}
	return nil
}
