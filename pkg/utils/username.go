package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 255
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// ValidateUsername checks length, then the allowed alphabet: letters, digits,
// underscore and dot, starting with a letter or digit.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return &ValidationError{Field: "username", Message: fmt.Sprintf("Username must be at least %d characters", MinUsernameLength)}
	}
	if len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Message: fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength)}
	}
	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username can only contain letters, numbers, dots and underscores"}
	}
	if first := rune(username[0]); !unicode.IsLetter(first) && !unicode.IsNumber(first) {
		return &ValidationError{Field: "username", Message: "Username must start with a letter or number"}
	}
	return nil
}

// NormalizeUsername trims surrounding whitespace. Case is preserved.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
