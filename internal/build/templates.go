package build

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/entjos/academic-kickstart/internal/content"
	"github.com/entjos/academic-kickstart/internal/site"
)

// Conventional layout names. base.html must exist and is the fallback for
// any page whose preferred layout is missing.
const (
	baseLayout = "base.html"
	homeLayout = "home.html"
	pageLayout = "single.html"
	listLayout = "list.html"
)

// PageContext is the data handed to single-page layouts.
type PageContext struct {
	Site *site.Site
	Page *content.Page
}

// ListContext is the data handed to list layouts: the posts index and the
// per-term taxonomy pages.
type ListContext struct {
	Site      *site.Site
	Title     string
	Taxonomy  string
	Term      string
	Permalink string
	Pages     []*content.Page
}

// HomeContext is the data handed to the homepage layout.
type HomeContext struct {
	Site *site.Site
}

// Templates wraps the parsed layout set.
type Templates struct {
	root *template.Template
}

// LoadTemplates parses every .html file under layoutsDir: the base layout
// and partials first so page layouts can reference them, the home layout
// last. Template functions close over the site being built.
func LoadTemplates(layoutsDir string, s *site.Site) (*Templates, error) {
	var base string
	var partials, layouts, home []string

	err := filepath.WalkDir(layoutsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		switch {
		case d.Name() == baseLayout && filepath.Dir(path) == filepath.Clean(layoutsDir):
			base = path
		case strings.HasPrefix(path, filepath.Join(layoutsDir, "partials")):
			partials = append(partials, path)
		case d.Name() == homeLayout:
			home = append(home, path)
		default:
			layouts = append(layouts, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finding layout files in %s: %w", layoutsDir, err)
	}
	if base == "" {
		return nil, fmt.Errorf("%s not found in layouts directory %s", baseLayout, layoutsDir)
	}

	root := template.New("").Funcs(funcMap(s))
	for _, group := range [][]string{append([]string{base}, partials...), layouts, home} {
		if len(group) == 0 {
			continue
		}
		if root, err = root.ParseFiles(group...); err != nil {
			return nil, fmt.Errorf("parsing layouts: %w", err)
		}
	}
	return &Templates{root: root}, nil
}

// Has reports whether a layout of the given name was parsed.
func (t *Templates) Has(name string) bool {
	return t.root.Lookup(name) != nil
}

// Execute renders the named layout.
func (t *Templates) Execute(w io.Writer, name string, data any) error {
	return t.root.ExecuteTemplate(w, name, data)
}

// layoutFor picks the layout for a page: the front-matter override when it
// exists, the kind's conventional layout otherwise, base.html as the last
// resort.
func (t *Templates) layoutFor(p *content.Page) string {
	if p.Layout != "" && t.Has(p.Layout) {
		return p.Layout
	}
	if t.Has(pageLayout) {
		return pageLayout
	}
	return baseLayout
}

func funcMap(s *site.Site) template.FuncMap {
	return template.FuncMap{
		"absURL": s.AbsURL,
		"dateFmt": func(layout string, t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"safeHTML": func(v string) template.HTML { return template.HTML(v) },
		"slugify":  content.Slugify,
	}
}
