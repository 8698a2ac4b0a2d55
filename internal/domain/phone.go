package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// MinDispatchablePhoneLength is the minimum normalized length required before
// a number may be dispatched: 2-digit country code + area code + number.
// Shorter numbers are a skip condition for the caller, not a normalizer error.
const MinDispatchablePhoneLength = 13

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone canonicalizes a raw phone string into the dedupe key: all
// non-digit characters stripped, country code prepended. A value that already
// starts with the country code is left as-is, which keeps normalization
// idempotent.
func NormalizePhone(raw string, countryCode string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidPhone)
	}

	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return "", fmt.Errorf("%w: no digits in %q", ErrInvalidPhone, raw)
	}

	if strings.HasPrefix(digits, countryCode) {
		return digits, nil
	}
	return countryCode + digits, nil
}

// Dispatchable reports whether a normalized phone is long enough to send to.
func Dispatchable(normalized string) bool {
	return len(normalized) >= MinDispatchablePhoneLength
}
