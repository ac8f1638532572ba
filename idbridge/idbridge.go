// Package idbridge maps UUID primary keys onto compact numeric identifiers
// for fields that can only hold a bounded integer, and resolves those
// numbers back to a UUID by scanning a bounded window of candidates.
//
// The numeric form is lossy: only the first 48 bits of the UUID are used
// and the result is reduced modulo 10^maxDigits, so two UUIDs can share a
// numeric id. Reverse lookups are a best-effort convenience, not an index.
package idbridge

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultMaxDigits bounds numeric ids to at most 9 decimal digits
	DefaultMaxDigits = 9
	// MaxDigitsLimit keeps 10^maxDigits inside int64
	MaxDigitsLimit = 18
	// DefaultDisplayLength is the length of human-facing short codes
	DefaultDisplayLength = 8

	prefixHexChars = 12
)

var numericPattern = regexp.MustCompile(`^\d+$`)

// Numeric returns the bounded numeric id derived from a UUID.
// The second result is false when id is empty or not UUID-shaped.
func Numeric(id string, maxDigits int) (int64, bool) {
	hex, ok := stripped(id)
	if !ok {
		return 0, false
	}

	value, err := strconv.ParseInt(hex[:prefixHexChars], 16, 64)
	if err != nil {
		return 0, false
	}

	return value % modulus(maxDigits), true
}

// NumericUUID is Numeric for an already parsed UUID.
func NumericUUID(id uuid.UUID, maxDigits int) (int64, bool) {
	if id == uuid.Nil {
		return 0, false
	}
	return Numeric(id.String(), maxDigits)
}

// DisplayID returns the first length characters of the UUID with hyphens
// removed. It is cosmetic and carries no uniqueness guarantee.
func DisplayID(id string, length int) string {
	if id == "" {
		return ""
	}
	if length <= 0 {
		length = DefaultDisplayLength
	}

	hex, ok := stripped(id)
	if !ok {
		hex = strings.ReplaceAll(id, "-", "")
	}
	if length > len(hex) {
		return hex
	}
	return hex[:length]
}

// IsNumeric reports whether s is an all-digit numeric identifier.
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// IsCanonical reports whether s parses as a UUID.
func IsCanonical(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// NormalizeDigits applies the default and the int64 clamp to maxDigits.
func NormalizeDigits(maxDigits int) int {
	if maxDigits <= 0 {
		return DefaultMaxDigits
	}
	if maxDigits > MaxDigitsLimit {
		return MaxDigitsLimit
	}
	return maxDigits
}

func modulus(maxDigits int) int64 {
	m := int64(1)
	for i := 0; i < NormalizeDigits(maxDigits); i++ {
		m *= 10
	}
	return m
}

// stripped returns the lowercase hex form of a UUID without hyphens.
func stripped(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return strings.ReplaceAll(parsed.String(), "-", ""), true
}
