package domain

import (
	"strings"
	"unicode"
)

// NormalizeName returns the comparison key for a charity name: lower case
// with every whitespace rune removed, so "Red Cross" and "red   cross" collide.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// IsDuplicate reports whether name normalizes to the same key as any entry
// of existing.
func IsDuplicate(name string, existing []string) bool {
	key := NormalizeName(name)
	for _, e := range existing {
		if NormalizeName(e) == key {
			return true
		}
	}
	return false
}
