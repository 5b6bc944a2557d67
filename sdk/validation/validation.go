// Package validation holds small input-checking helpers shared by the core
// and bridge layers.
package validation

import "strings"

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// StringPtrIfNotEmpty returns nil for an empty string.
func StringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
