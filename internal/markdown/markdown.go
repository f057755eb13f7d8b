// Package markdown converts content bodies to HTML. Conversion is delegated
// entirely to goldmark; this package only owns the option set and the
// summary extraction used for list pages and the feed.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Converter renders markdown bodies to HTML.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds the site's markdown pipeline: GitHub-flavoured
// markdown plus footnotes, auto heading IDs, and raw HTML passthrough (the
// posts embed figures and tables exported from analysis scripts).
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

// Convert renders a markdown body to HTML.
func (c *Converter) Convert(body []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// ConvertString renders a front-matter markdown snippet, such as a widget
// entry description.
func (c *Converter) ConvertString(s string) (template.HTML, error) {
	if s == "" {
		return "", nil
	}
	return c.Convert([]byte(s))
}
