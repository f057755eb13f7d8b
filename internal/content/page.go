// Package content owns the site's data model: pages and posts with front
// matter, the author profile, and the experience and accomplishment widget
// records. It loads all of them from the conventional content directory.
package content

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page kinds as routed by the loader.
const (
	KindPost    = "post"
	KindPage    = "page"
	KindProfile = "profile"
	KindWidget  = "widget"
)

// Page represents a single piece of content: a blog post, a plain page, or
// the page underlying a profile or widget record.
type Page struct {
	Title      string
	Subtitle   string
	Date       time.Time
	Lastmod    time.Time
	Draft      bool
	Authors    []string
	Tags       []string
	Categories []string
	Summary    string
	Slug       string
	Section    string
	Kind       string
	SourcePath string
	Permalink  string
	Layout     string
	Weight     int
	Body       []byte
	HTML       template.HTML
	Params     map[string]any
}

// Current reports whether the page should be published right now: not a
// draft and not dated in the future.
func (p *Page) Current(now time.Time) bool {
	if p.Draft {
		return false
	}
	if !p.Date.IsZero() && p.Date.After(now) {
		return false
	}
	return true
}

// dateFormats is the ladder of accepted front-matter date layouts, most
// specific first.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a front-matter date value. YAML and TOML decoders hand
// dates over either as time.Time or as strings, depending on how the author
// quoted them.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return d, nil
	case string:
		if d == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q (use YYYY-MM-DD or RFC3339)", d)
	default:
		return time.Time{}, fmt.Errorf("unrecognised date value of type %T", v)
	}
}

var titleCaser = cases.Title(language.English)

// TitleFromFilename derives a page title from its source file name when the
// front matter has none: hyphens and underscores become spaces, words are
// title-cased.
func TitleFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if base == "index" || base == "_index" {
		base = filepath.Base(filepath.Dir(path))
	}
	base = strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	return titleCaser.String(base)
}

// PermalinkFromPath derives the site-relative permalink for a content file:
// content/post/my-entry.md becomes /post/my-entry/, and the bundle form
// content/post/my-entry/index.md collapses to the same path. _index.md maps
// to its section root.
func PermalinkFromPath(relPath string) string {
	p := strings.TrimSuffix(filepath.ToSlash(relPath), filepath.Ext(relPath))
	switch {
	case strings.HasSuffix(p, "/_index"):
		p = strings.TrimSuffix(p, "_index")
	case p == "_index":
		p = ""
	case strings.HasSuffix(p, "/index"):
		p = strings.TrimSuffix(p, "index")
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// ApplySlug replaces the final path element of a permalink with the given
// slug, normalised for URLs.
func ApplySlug(permalink, slug string) string {
	s := Slugify(slug)
	if s == "" {
		return permalink
	}
	trimmed := strings.Trim(permalink, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || trimmed == "" {
		return "/" + s + "/"
	}
	parts[len(parts)-1] = s
	return "/" + strings.Join(parts, "/") + "/"
}
