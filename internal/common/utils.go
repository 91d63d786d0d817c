package common

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the caseless form of s, suitable for equality and
// substring matching independent of letter case.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsAnyFold returns true if any of the fields contains sub, ignoring case.
// An empty sub matches everything.
func ContainsAnyFold(sub string, fields ...string) bool {
	needle := Fold(sub)
	for _, f := range fields {
		if strings.Contains(Fold(f), needle) {
			return true
		}
	}
	return false
}
