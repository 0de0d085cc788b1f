package utils

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinFullnameLength = 3
	MaxFullnameLength = 255
	MinPasswordLength = 8
)

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare RFC 5322 address, no display name.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return &ValidationError{Field: "email", Message: "Email must be a valid email"}
	}
	return nil
}

func ValidateFullname(fullname string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(fullname))
	if n < MinFullnameLength || n > MaxFullnameLength {
		return &ValidationError{Field: "fullname", Message: fmt.Sprintf("Fullname must be between %d and %d characters", MinFullnameLength, MaxFullnameLength)}
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}
