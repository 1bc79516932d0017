package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength bounds map and session names.
const MaxNameLength = 128

// ValidateName validates a map name used as a store key.
// Names become file names in the file store and keys in the remote stores,
// so the rules are conservative:
//   - No empty or whitespace-only names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of [MaxNameLength] characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "name cannot contain path separators")
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "name cannot start with a dot")
	}
	return nil
}

// ValidateNumber rejects NaN and infinite values.
func ValidateNumber(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number, got %v", field, v)
	}
	return nil
}

// ValidatePositive rejects non-finite values and values <= 0.
func ValidatePositive(field string, v float64) error {
	if err := ValidateNumber(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %v", field, v)
	}
	return nil
}

// colorRegex matches #rgb, #rrggbb and #rrggbbaa hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// namedColorRegex matches CSS color keywords such as "steelblue".
var namedColorRegex = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)

// ValidateColor validates a CSS color as accepted by the renderers:
// a hex color or a lowercase keyword.
func ValidateColor(c string) error {
	if c == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if colorRegex.MatchString(c) || namedColorRegex.MatchString(c) {
		return nil
	}
	return New(ErrCodeInvalidColor, "invalid color: %q", c)
}
