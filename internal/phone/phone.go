// Package phone normalizes raw phone input to the canonical 10-digit
// national form used for order lookups.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPhone = errors.New("phone: invalid number")

// Normalize strips formatting, drops a leading country code (91) or trunk
// prefix (0), and validates the remaining 10 digits. Numbers with an
// invalid leading digit, all-repeated digits, or a sequential digit run
// are rejected.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}

	if len(digits) != 10 {
		return "", fmt.Errorf("%w: expected 10 digits, got %d", ErrInvalidPhone, len(digits))
	}
	if digits[0] < '6' || digits[0] > '9' {
		return "", fmt.Errorf("%w: invalid leading digit %c", ErrInvalidPhone, digits[0])
	}
	if allSame(digits) {
		return "", fmt.Errorf("%w: repeated digit pattern", ErrInvalidPhone)
	}
	if sequential(digits) {
		return "", fmt.Errorf("%w: sequential digit pattern", ErrInvalidPhone)
	}
	return digits, nil
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// sequential reports an ascending run like 1234567890. Descending runs
// are real numbers in the wild (9876543210) and are accepted.
func sequential(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[i-1]+1 {
			return false
		}
	}
	return true
}
