// Package strings provides string and slice helpers shared by services
package strings

import (
	std "strings"

	"golang.org/x/text/unicode/norm"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustPrefix normalizes and asserts a root path like /events or /report
// ensures a single leading slash and no trailing slash
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Truncate shortens s to at most max runes after NFC normalization
// longer strings keep max-1 runes followed by ellipsis
func Truncate(s string, max int, ellipsis string) string {
	s = norm.NFC.String(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return ellipsis
	}
	return string(r[:max-1]) + ellipsis
}

// ContainsAny reports whether s contains any of the non empty needles
func ContainsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && std.Contains(s, n) {
			return true
		}
	}
	return false
}

// EscapeNewlines renders CR and LF as literal \r and \n so a value stays on one line
func EscapeNewlines(s string) string {
	return newlineEscaper.Replace(s)
}

var newlineEscaper = std.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`, "\t", " ")
