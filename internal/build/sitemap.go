package build

import (
	"encoding/xml"
	"io"
	"sort"
	"time"

	"github.com/entjos/academic-kickstart/internal/content"
	"github.com/entjos/academic-kickstart/internal/site"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	Lastmod string `xml:"lastmod,omitempty"`
}

// WriteSitemap emits a sitemap covering the home page, every visible
// post and page, and the taxonomy list pages.
func WriteSitemap(path string, s *site.Site) error {
	doc := sitemapDoc(s)
	return writeAtomic(path, func(w io.Writer) error {
		return writeXML(w, doc)
	})
}

func sitemapDoc(s *site.Site) urlSet {
	doc := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	home := urlEntry{Loc: s.AbsURL("/")}
	if len(s.Posts) > 0 {
		home.Lastmod = lastmod(s.Posts[0])
	}
	doc.URLs = append(doc.URLs, home)

	if len(s.Posts) > 0 {
		doc.URLs = append(doc.URLs, urlEntry{
			Loc:     s.AbsURL("/post/"),
			Lastmod: lastmod(s.Posts[0]),
		})
	}
	for _, p := range s.Posts {
		doc.URLs = append(doc.URLs, urlEntry{Loc: s.AbsURL(p.Permalink), Lastmod: lastmod(p)})
	}
	for _, p := range s.Pages {
		doc.URLs = append(doc.URLs, urlEntry{Loc: s.AbsURL(p.Permalink), Lastmod: lastmod(p)})
	}
	doc.URLs = append(doc.URLs, taxonomyEntries(s, "/tags/", s.Tags)...)
	doc.URLs = append(doc.URLs, taxonomyEntries(s, "/categories/", s.Categories)...)
	return doc
}

func taxonomyEntries(s *site.Site, prefix string, terms map[string][]*content.Page) []urlEntry {
	names := make([]string, 0, len(terms))
	for name := range terms {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]urlEntry, 0, len(names))
	for _, name := range names {
		slug := content.Slugify(name)
		if slug == "" {
			continue
		}
		entry := urlEntry{Loc: s.AbsURL(prefix + slug + "/")}
		if pages := terms[name]; len(pages) > 0 {
			entry.Lastmod = lastmod(pages[0])
		}
		entries = append(entries, entry)
	}
	return entries
}

func lastmod(p *content.Page) string {
	t := p.Lastmod
	if t.IsZero() {
		t = p.Date
	}
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
