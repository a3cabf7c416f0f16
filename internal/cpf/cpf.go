// Package cpf validates Brazilian individual taxpayer registry numbers.
package cpf

import (
	"errors"
	"strings"
)

// Sentinel errors returned by Validate.
var (
	// ErrInvalidFormat indicates the input does not contain exactly 11 digits.
	ErrInvalidFormat = errors.New("cpf: must contain exactly 11 digits")
	// ErrInvalidChecksum indicates the check digits do not match.
	ErrInvalidChecksum = errors.New("cpf: invalid check digits")
)

// Clean strips every non-digit character from the input. Cleaning an
// already-clean string returns the same string.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate cleans the input and verifies both CPF check digits.
// It is a pure function with no side effects.
func Validate(raw string) error {
	digits := Clean(raw)
	if len(digits) != 11 {
		return ErrInvalidFormat
	}
	if allSame(digits) {
		return ErrInvalidChecksum
	}
	if checkDigit(digits[:9], 10) != int(digits[9]-'0') {
		return ErrInvalidChecksum
	}
	if checkDigit(digits[:10], 11) != int(digits[10]-'0') {
		return ErrInvalidChecksum
	}
	return nil
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// checkDigit computes a CPF check digit over the given prefix using
// descending weights starting at firstWeight.
func checkDigit(prefix string, firstWeight int) int {
	sum := 0
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * (firstWeight - i)
	}
	r := (sum * 10) % 11
	if r == 10 || r == 11 {
		return 0
	}
	return r
}
