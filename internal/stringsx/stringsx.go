package stringsx

import (
	"strings"
	"unicode/utf8"
)

// Clip returns at most max runes of s.
// If max <= 0, an empty string is returned.
func Clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Length reports the number of runes in s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// Normalize trims spaces and converts a string to lower case.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEmpty reports whether s is empty after trimming spaces.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
