package domain

import "strings"

// ParseBool converts a stored flag to a boolean. Only the text "true"
// (case-insensitive, surrounding whitespace ignored) is true; anything else,
// including the empty string, is false.
func ParseBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}
