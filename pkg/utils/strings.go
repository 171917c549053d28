package utils

import "strings"

// Truncate shortens s to at most n runes, trimming trailing whitespace.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), " ")
}
