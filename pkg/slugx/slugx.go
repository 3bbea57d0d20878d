// Package slugx derives URL-safe slugs from display names. Slugs are the
// public identifiers for organizations and projects, so the mapping must be
// stable: the same name always yields the same slug.
package slugx

import (
	"strings"
	"unicode"
)

// Make lowercases name, drops diacritic-free non-alphanumerics, and joins the
// remaining words with single hyphens. It never returns leading or trailing
// hyphens. An input with no usable characters yields "".
func Make(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
