package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entjos/academic-kickstart/internal/config"
	"github.com/entjos/academic-kickstart/internal/content"
	"github.com/entjos/academic-kickstart/internal/markdown"
	"github.com/entjos/academic-kickstart/internal/site"
)

func testDate(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// testSource writes a small but complete site source tree and returns its
// config.
func testSource(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"content/authors/admin/_index.md": `---
title: Jane Doe
superuser: true
role: Researcher
---

Short bio.
`,
		"content/home/experience.md": `+++
widget = "experience"
active = true
title = "Experience"

[[experience]]
  title = "Researcher"
  company = "Example University"
  date_start = "2020-01-01"
  date_end = ""
+++
`,
		"content/post/hello-world.md": `---
title: Hello World
date: 2026-01-02
tags:
  - R
---

Some **bold** text.
`,
		"content/post/drafty.md": `---
title: Drafty
date: 2026-01-03
draft: true
---

Not yet.
`,
		"content/about.md": `---
title: About
---

About body.
`,
		"layouts/base.html": `<!DOCTYPE html>
<html><head><title>{{with .Page}}{{.Title}} | {{end}}{{.Site.Config.Title}}</title>
{{template "head.html" .Site}}</head>
<body>{{with .Page}}<h1>{{.Title}}</h1>{{.HTML}}{{end}}</body></html>
`,
		"layouts/home.html": `<!DOCTYPE html>
<html><head><title>{{.Site.Config.Title}}</title>{{template "head.html" .Site}}</head>
<body>
{{with .Site.Profile}}<h1>{{.DisplayName}}</h1>{{end}}
{{with .Site.Experience}}<h2>{{.Title}}</h2>{{end}}
{{range .Site.Recent 5}}<a href="{{absURL .Permalink}}">{{.Title}}</a>{{end}}
</body></html>
`,
		"layouts/single.html": `<!DOCTYPE html>
<html><head><title>{{.Page.Title}}</title>{{template "head.html" .Site}}</head>
<body><article><h1>{{.Page.Title}}</h1>{{.Page.HTML}}</article>
{{range .Page.Tags}}<a href="{{absURL (printf "/tags/%s/" (slugify .))}}">{{.}}</a>{{end}}
</body></html>
`,
		"layouts/list.html": `<!DOCTYPE html>
<html><head><title>{{.Title}}</title>{{template "head.html" .Site}}</head>
<body><h1>{{.Title}}</h1>
{{range .Pages}}<a href="{{absURL .Permalink}}">{{.Title}}</a>{{end}}
</body></html>
`,
		"layouts/partials/head.html": `<link rel="stylesheet" href="{{absURL "/css/main.css"}}">
`,
		"static/css/main.css": "body { margin: 0; }\n",
	}
	for rel, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	return &config.Config{
		Title:     "Test Site",
		Copyright: "© 2026 Jane Doe",
		SourceDir: dir,
		OutputDir: "public",
		Content: config.ContentConfig{
			Dir:        "content",
			LayoutsDir: "layouts",
			StaticDir:  "static",
			DateFormat: "Jan 2, 2006",
			SummaryLen: 30,
		},
		Feed:   config.FeedConfig{Limit: 15},
		Search: config.SearchConfig{Enabled: true},
	}
}

func loadTestSite(t *testing.T, cfg *config.Config, includeDrafts bool) *site.Site {
	t.Helper()
	loader := content.NewLoader(markdown.NewConverter(), content.LoaderOptions{
		Logger:        zerolog.Nop(),
		SummaryLength: cfg.Content.SummaryLen,
	})
	tree, err := loader.Load(cfg.ContentDir())
	require.NoError(t, err)
	return site.Assemble(cfg, tree, site.Options{IncludeDrafts: includeDrafts})
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.PublishDir(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBuild(t *testing.T) {
	cfg := testSource(t)
	s := loadTestSite(t, cfg, false)

	stats, err := Build(context.Background(), cfg, s)
	require.NoError(t, err)

	// home, 1 post, 1 page, the posts index and one tag page
	assert.Equal(t, 5, stats.Pages)
	assert.Greater(t, stats.Duration, time.Duration(0))

	home := readOutput(t, cfg, "index.html")
	assert.Contains(t, home, "Jane Doe")
	assert.Contains(t, home, "Experience")
	assert.Contains(t, home, `href="/post/hello-world/"`)

	post := readOutput(t, cfg, "post/hello-world/index.html")
	assert.Contains(t, post, "<strong>bold</strong>")
	assert.Contains(t, post, `href="/tags/r/"`)

	list := readOutput(t, cfg, "post/index.html")
	assert.Contains(t, list, "Hello World")
	assert.NotContains(t, list, "Drafty")

	assert.Contains(t, readOutput(t, cfg, "tags/r/index.html"), "Hello World")
	assert.Contains(t, readOutput(t, cfg, "about/index.html"), "About body.")

	assert.Equal(t, "body { margin: 0; }\n", readOutput(t, cfg, "css/main.css"))

	_, err = os.Stat(filepath.Join(cfg.PublishDir(), "post", "drafty"))
	assert.True(t, os.IsNotExist(err), "draft posts must not be rendered")

	assert.Contains(t, readOutput(t, cfg, "feed.xml"), "<rss")
	assert.Contains(t, readOutput(t, cfg, "sitemap.xml"), "urlset")

	var entries []indexEntry
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg, "index.json")), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Hello World", entries[0].Title)
}

func TestBuild_IncludeDrafts(t *testing.T) {
	cfg := testSource(t)
	s := loadTestSite(t, cfg, true)

	_, err := Build(context.Background(), cfg, s)
	require.NoError(t, err)

	assert.Contains(t, readOutput(t, cfg, "post/drafty/index.html"), "Not yet.")
}

func TestBuild_SearchIndexDisabled(t *testing.T) {
	cfg := testSource(t)
	cfg.Search.Enabled = false
	s := loadTestSite(t, cfg, false)

	_, err := Build(context.Background(), cfg, s)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.PublishDir(), "index.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_BrokenLayoutKeepsPreviousOutput(t *testing.T) {
	cfg := testSource(t)
	s := loadTestSite(t, cfg, false)

	_, err := Build(context.Background(), cfg, s)
	require.NoError(t, err)
	before := readOutput(t, cfg, "index.html")

	broken := filepath.Join(cfg.LayoutsDir(), "single.html")
	require.NoError(t, os.WriteFile(broken, []byte(`{{define "oops"}}`), 0o644))

	_, err = Build(context.Background(), cfg, s)
	require.Error(t, err)

	assert.Equal(t, before, readOutput(t, cfg, "index.html"),
		"a build that fails to parse layouts must leave the previous output alone")
}

func TestBuild_MissingLayoutsDir(t *testing.T) {
	cfg := testSource(t)
	require.NoError(t, os.RemoveAll(cfg.LayoutsDir()))
	s := loadTestSite(t, cfg, false)

	_, err := Build(context.Background(), cfg, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layouts directory")
}

func TestBuild_MissingHomeLayout(t *testing.T) {
	cfg := testSource(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.LayoutsDir(), "home.html")))
	s := loadTestSite(t, cfg, false)

	_, err := Build(context.Background(), cfg, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home.html")
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("pub", "index.html"), outputPath("pub", "/"))
	assert.Equal(t, filepath.Join("pub", "post", "a", "index.html"), outputPath("pub", "/post/a/"))
	assert.Equal(t, filepath.Join("pub", "tags", "r", "index.html"), outputPath("pub", "/tags/r/"))
}
