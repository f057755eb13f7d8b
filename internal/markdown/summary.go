package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MoreDivider marks the end of a hand-picked summary inside a post body.
var MoreDivider = []byte("<!--more-->")

var stripPolicy = bluemonday.StrictPolicy()

// SplitSummary returns the part of the body before the <!--more--> divider
// and whether a divider was present.
func SplitSummary(body []byte) ([]byte, bool) {
	if i := bytes.Index(body, MoreDivider); i >= 0 {
		return bytes.TrimSpace(body[:i]), true
	}
	return nil, false
}

// PlainText strips every tag from rendered HTML, leaving readable text with
// normalised whitespace.
func PlainText(html string) string {
	return strings.Join(strings.Fields(stripPolicy.Sanitize(html)), " ")
}

// Truncate shortens text to at most n words, appending an ellipsis when
// anything was cut. n <= 0 leaves the text untouched.
func Truncate(text string, n int) string {
	if n <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + " …"
}

// Summarize produces a plain-text summary from rendered HTML, capped at n
// words.
func Summarize(html string, n int) string {
	return Truncate(PlainText(html), n)
}
