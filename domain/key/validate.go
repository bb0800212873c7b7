package key

import (
	"strings"
	"time"
)

// Validate checks whether a key may pass the gate at the given time.
// A revoked key fails with the same reason as an unknown key so callers
// cannot distinguish "revoked" from "never existed".
// This is a PURE function.
func Validate(k Key, now time.Time) ValidationResult {
	if k.RevokedAt != nil && !now.Before(*k.RevokedAt) {
		return ValidationResult{Valid: false, Reason: ReasonInvalid}
	}
	return ValidationResult{Valid: true, Key: k}
}

// ValidateFormat checks whether a raw secret has a plausible shape.
// Returns (prefix, valid); the prefix is used for the store lookup.
// This is a PURE function.
func ValidateFormat(rawSecret, expectedPrefix string) (prefix string, valid bool) {
	if !strings.HasPrefix(rawSecret, expectedPrefix) {
		return "", false
	}
	if len(rawSecret) < len(expectedPrefix)+64 {
		return "", false
	}
	return rawSecret[:PrefixLen], true
}
