package util

import (
	"html"
	"strings"
)

// SanitizeInput trims whitespace and escapes HTML-significant characters
// from free-text fields (names, school, district) before storage.
func SanitizeInput(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
