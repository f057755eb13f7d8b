package content

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/rs/zerolog"

	"github.com/entjos/academic-kickstart/internal/markdown"
)

// Tree is the loaded content of a site, still unfiltered and unsorted:
// assembly decides visibility and ordering.
type Tree struct {
	Posts           []*Page
	Pages           []*Page
	Widgets         []*Page
	Profiles        []*Profile
	Experience      *ExperienceWidget
	Accomplishments *AccomplishmentsWidget
}

// Loader reads a content directory into a Tree.
type Loader struct {
	conv          *markdown.Converter
	logger        zerolog.Logger
	summaryLength int
}

// LoaderOptions configures content loading.
type LoaderOptions struct {
	Logger        zerolog.Logger
	SummaryLength int
}

// NewLoader returns a Loader rendering bodies with the given converter.
func NewLoader(conv *markdown.Converter, opts LoaderOptions) *Loader {
	return &Loader{
		conv:          conv,
		logger:        opts.Logger,
		summaryLength: opts.SummaryLength,
	}
}

// Load walks contentDir and parses every markdown file into the Tree. Files
// without front matter are accepted as pure markdown; malformed front matter
// fails the load. Semantic problems such as unparseable dates are logged and
// left for the check command to report.
func (l *Loader) Load(contentDir string) (*Tree, error) {
	tree := &Tree{}

	if _, err := os.Stat(contentDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("content directory %s not found", contentDir)
	}

	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		rel, err := filepath.Rel(contentDir, path)
		if err != nil {
			return fmt.Errorf("relativising %s: %w", path, err)
		}

		if err := l.loadFile(tree, path, rel); err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic order regardless of filesystem walk quirks; assembly
	// re-sorts by date later.
	sort.Slice(tree.Posts, func(i, j int) bool { return tree.Posts[i].SourcePath < tree.Posts[j].SourcePath })
	sort.Slice(tree.Pages, func(i, j int) bool { return tree.Pages[i].SourcePath < tree.Pages[j].SourcePath })

	return tree, nil
}

func (l *Loader) loadFile(tree *Tree, path, rel string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	section := sectionOf(rel)
	switch {
	case section == "authors":
		profile, err := l.loadProfile(raw, path, rel)
		if err != nil {
			return err
		}
		tree.Profiles = append(tree.Profiles, profile)
	case section == "home":
		return l.loadWidget(tree, raw, path, rel)
	default:
		page, err := l.loadPage(raw, path, rel)
		if err != nil {
			return err
		}
		if page.Kind == KindPost {
			tree.Posts = append(tree.Posts, page)
		} else {
			tree.Pages = append(tree.Pages, page)
		}
	}
	return nil
}

// sectionOf returns the first path element of a relative content path, or ""
// for top-level files.
func sectionOf(rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.IndexByte(rel, '/'); i > 0 {
		return rel[:i]
	}
	return ""
}

// loadPage parses a regular page or post. Front matter is decoded into a
// map, the known keys are lifted into typed fields and the whole map stays
// reachable through Params.
func (l *Loader) loadPage(raw []byte, path, rel string) (*Page, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}

	page := &Page{
		Section:    sectionOf(rel),
		SourcePath: path,
		Body:       body,
		Params:     meta,
	}
	page.Kind = KindPage
	if page.Section == "post" {
		page.Kind = KindPost
	}

	page.Title = getString(meta, "title")
	if page.Title == "" {
		page.Title = TitleFromFilename(rel)
	}
	page.Subtitle = getString(meta, "subtitle")
	page.Draft = getBool(meta, "draft")
	page.Layout = getString(meta, "layout")
	page.Weight = getInt(meta, "weight")
	page.Slug = getString(meta, "slug")
	page.Tags = getStringSlice(meta, "tags")
	page.Categories = getStringSlice(meta, "categories")

	page.Authors = getStringSlice(meta, "authors")
	if len(page.Authors) == 0 {
		if author := getString(meta, "author"); author != "" {
			page.Authors = []string{author}
		}
	}

	page.Date = l.dateField(meta, "date", rel)
	page.Lastmod = l.dateField(meta, "lastmod", rel)
	if page.Lastmod.IsZero() {
		page.Lastmod = page.Date
	}

	page.Permalink = PermalinkFromPath(rel)
	if page.Slug != "" {
		page.Permalink = ApplySlug(page.Permalink, page.Slug)
	}

	page.HTML, err = l.conv.Convert(body)
	if err != nil {
		return nil, err
	}

	page.Summary = l.summarize(meta, body)
	return page, nil
}

func (l *Loader) summarize(meta map[string]any, body []byte) string {
	if s := getString(meta, "summary"); s != "" {
		return s
	}
	if lead, ok := markdown.SplitSummary(body); ok {
		html, err := l.conv.Convert(lead)
		if err == nil {
			return markdown.PlainText(string(html))
		}
	}
	html, err := l.conv.Convert(body)
	if err != nil {
		return ""
	}
	return markdown.Summarize(string(html), l.summaryLength)
}

func (l *Loader) loadProfile(raw []byte, path, rel string) (*Profile, error) {
	var meta profileMeta
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}

	page := &Page{
		Title:      meta.Title,
		Section:    "authors",
		Kind:       KindProfile,
		SourcePath: path,
		Permalink:  PermalinkFromPath(rel),
		Body:       body,
	}
	if page.Title == "" {
		page.Title = TitleFromFilename(rel)
	}

	username := filepath.Base(filepath.Dir(rel))
	profile := meta.toProfile(username, page)

	profile.BioHTML, err = l.conv.Convert(body)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (l *Loader) loadWidget(tree *Tree, raw []byte, path, rel string) error {
	name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	switch name {
	case "experience":
		w, err := l.loadExperience(raw, path, rel)
		if err != nil {
			return err
		}
		tree.Experience = w
	case "accomplishments":
		w, err := l.loadAccomplishments(raw, path, rel)
		if err != nil {
			return err
		}
		tree.Accomplishments = w
	default:
		page, err := l.loadPage(raw, path, rel)
		if err != nil {
			return err
		}
		page.Kind = KindWidget
		tree.Widgets = append(tree.Widgets, page)
	}
	return nil
}

func (l *Loader) loadExperience(raw []byte, path, rel string) (*ExperienceWidget, error) {
	var meta experienceMeta
	if _, err := frontmatter.Parse(bytes.NewReader(raw), &meta); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}

	w := &ExperienceWidget{
		WidgetHeader: meta.header(),
		Page:         &Page{Section: "home", Kind: KindWidget, SourcePath: path},
	}
	for i, item := range meta.Experience {
		start, end, err := dateRange(item.DateStart, item.DateEnd)
		if err != nil {
			l.logger.Warn().Str("file", rel).Int("entry", i).Err(err).Msg("invalid experience date")
		}
		html, err := l.conv.ConvertString(item.Description)
		if err != nil {
			return nil, err
		}
		w.Items = append(w.Items, Experience{
			Title:       item.Title,
			Company:     item.Company,
			CompanyURL:  item.CompanyURL,
			Location:    item.Location,
			DateStart:   start,
			DateEnd:     end,
			Description: item.Description,
			HTML:        html,
		})
	}
	return w, nil
}

func (l *Loader) loadAccomplishments(raw []byte, path, rel string) (*AccomplishmentsWidget, error) {
	var meta accomplishmentsMeta
	if _, err := frontmatter.Parse(bytes.NewReader(raw), &meta); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}

	w := &AccomplishmentsWidget{
		WidgetHeader: meta.header(),
		Page:         &Page{Section: "home", Kind: KindWidget, SourcePath: path},
	}
	for i, item := range meta.Items {
		start, end, err := dateRange(item.DateStart, item.DateEnd)
		if err != nil {
			l.logger.Warn().Str("file", rel).Int("entry", i).Err(err).Msg("invalid accomplishment date")
		}
		html, err := l.conv.ConvertString(item.Description)
		if err != nil {
			return nil, err
		}
		w.Items = append(w.Items, Accomplishment{
			Organization:    item.Organization,
			OrganizationURL: item.OrganizationURL,
			Title:           item.Title,
			URL:             item.URL,
			CertificateURL:  item.CertificateURL,
			DateStart:       start,
			DateEnd:         end,
			Description:     item.Description,
			HTML:            html,
		})
	}
	return w, nil
}

func (l *Loader) dateField(meta map[string]any, key, rel string) (t time.Time) {
	t, err := ParseDate(meta[key])
	if err != nil {
		l.logger.Warn().Str("file", rel).Str("field", key).Err(err).Msg("invalid date")
	}
	return t
}

func getString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getBool(m map[string]any, key string) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

func getInt(m map[string]any, key string) int {
	switch n := m[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func getStringSlice(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
