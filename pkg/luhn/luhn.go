// Package luhn implements the check-digit scheme used by folio strings.
//
// The variant here doubles every even 0-based position (left to right),
// which matches the backend's folio parser. It is close to, but not the
// same as, the classic right-anchored Luhn; do not swap in a generic
// implementation without checking the anchoring.
package luhn

import (
	dErrors "multa-gateway/pkg/domain-errors"
)

// Compute returns the check digit for a numeric string.
// Returns CodeInvalidInput if digits contains anything but ASCII digits.
func Compute(digits string) (int, error) {
	if digits == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "empty digit string")
	}
	sum := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, dErrors.New(dErrors.CodeInvalidInput, "non-numeric character in digit string")
		}
		d := int(c - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return (10 - sum%10) % 10, nil
}

// Validate recomputes the check digit and compares it with the candidate.
func Validate(digits string, check int) (bool, error) {
	computed, err := Compute(digits)
	if err != nil {
		return false, err
	}
	return computed == check, nil
}

// ValidateString validates a full digit string whose last character is the
// check digit. Convenience for callers holding an assembled folio.
func ValidateString(s string) (bool, error) {
	if len(s) < 2 {
		return false, dErrors.New(dErrors.CodeInvalidInput, "digit string too short")
	}
	last := s[len(s)-1]
	if last < '0' || last > '9' {
		return false, dErrors.New(dErrors.CodeInvalidInput, "non-numeric check digit")
	}
	return Validate(s[:len(s)-1], int(last-'0'))
}
