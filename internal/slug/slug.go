// Package slug builds URL-safe identifiers and short previews from free text.
package slug

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLength is the number of characters kept when an excerpt is derived from content.
const DefaultExcerptLength = 150

// Make lowercases s, keeps ASCII letters and digits, and collapses every
// other run of characters into a single hyphen.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Excerpt returns the first n characters of content followed by "...", or
// content unchanged when it is not longer than n.
func Excerpt(content string, n int) string {
	if n <= 0 {
		n = DefaultExcerptLength
	}
	if utf8.RuneCountInString(content) <= n {
		return content
	}
	runes := []rune(content)
	return string(runes[:n]) + "..."
}

// WithSuffix returns base with "-n" appended for n > 1, used to dedupe slugs.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
