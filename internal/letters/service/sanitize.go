package service

import (
	"strings"
	"unicode"
)

const maxSanitizedLength = 50

// Sanitize makes a name safe for archive entries: characters outside
// [A-Za-z0-9 _-] are stripped, whitespace collapses to underscores, and the
// result is capped at 50 characters.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	sanitized := strings.Join(strings.Fields(b.String()), "_")
	if len(sanitized) > maxSanitizedLength {
		sanitized = sanitized[:maxSanitizedLength]
	}
	return sanitized
}
