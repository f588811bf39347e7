package utils

import (
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// SanitizeInput strips HTML tags and surrounding whitespace from user
// input at the API boundary.
func SanitizeInput(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// IsValidEmail is a structural check only: something@something.tld
// without whitespace.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
