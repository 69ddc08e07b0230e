// Package textnorm canonicalizes free text typed by users so that category names and
// menu answers compare equal regardless of accents and letter case.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize decomposes s, drops combining marks and upper-cases the result.
// "Café", "cafe" and "CAFÉ" all normalize to "CAFE".
func Normalize(s string) string {
	// transform.Chain keeps state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.ToUpper(stripped)
}

// EqualFold reports whether a and b normalize to the same key.
func EqualFold(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsValidCategory rejects names that are only digits once commas and periods are removed,
// which is what a user typing an amount into a category prompt produces.
func IsValidCategory(s string) bool {
	digits := strings.NewReplacer(",", "", ".", "").Replace(s)
	if digits == "" {
		return true
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the first entry in list that normalizes to the same key
// as s, or -1.
func IndexOf(list []string, s string) int {
	key := Normalize(s)
	for i, item := range list {
		if Normalize(item) == key {
			return i
		}
	}
	return -1
}
