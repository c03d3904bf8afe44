// Package core holds the domain model: entities, validation rules and
// money handling. Monetary amounts are stored as integer cents so that
// summation never accumulates floating-point error; conversion to major
// units happens only at the API boundary.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a positive decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) separators and performs
// half-up rounding on the third decimal place. Signed, zero and
// non-numeric inputs are rejected.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewValidationError("amount", "amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, NewValidationError("amount", "amount must be positive")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, NewValidationError("amount", "amount is not a valid decimal")
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, NewValidationError("amount", "amount is not a valid decimal")
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, NewValidationError("amount", "amount is out of range")
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, NewValidationError("amount", "amount is out of range")
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, NewValidationError("amount", "amount must be positive")
	}
	return cents, nil
}

// CentsFromMajor converts a major-unit amount (e.g. 75.50) to the
// nearest cent count. The amount must be positive and finite.
func CentsFromMajor(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewValidationError("amount", "amount is not a valid number")
	}
	if v <= 0 {
		return 0, NewValidationError("amount", "amount must be positive")
	}
	cents := math.Round(v * 100)
	if cents <= 0 || cents > float64(1<<62) {
		return 0, NewValidationError("amount", "amount is out of range")
	}
	return int64(cents), nil
}

// MajorFromCents converts a cent count to major units for display.
// Only the API boundary uses this; aggregation stays in cents.
func MajorFromCents(cents int64) float64 {
	return float64(cents) / 100.0
}
