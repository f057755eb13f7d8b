package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a title or slug candidate into a URL-safe path element:
// diacritics are stripped after NFKD decomposition, letters are lowered, and
// every run of non-alphanumeric characters collapses into a single hyphen.
func Slugify(s string) string {
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
