package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// NumberLength is the number of digits in secrets and guesses
	NumberLength = 4

	// MaxPlayerNameLength bounds display names after trimming
	MaxPlayerNameLength = 50
)

// ValidateNumber checks that s is exactly NumberLength decimal digits
func ValidateNumber(s string) error {
	if len(s) != NumberLength {
		return fmt.Errorf("%w: must be exactly %d digits", ErrInvalidNumberFormat, NumberLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fmt.Errorf("%w: must contain only digits 0-9", ErrInvalidNumberFormat)
		}
	}
	return nil
}

// NormalizePlayerName trims the name and checks its length
func NormalizePlayerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidPlayerName)
	}
	if utf8.RuneCountInString(trimmed) > MaxPlayerNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidPlayerName, MaxPlayerNameLength)
	}
	return trimmed, nil
}
