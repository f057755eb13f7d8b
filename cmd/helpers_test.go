package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// resetGlobals restores the package flag state between test runs so values
// parsed by one Execute do not leak into the next.
func resetGlobals() {
	cfgFile = ""
	sourceDir = ""
	verbose = false
	quiet = false

	buildDrafts = false
	buildBaseURL = ""
	buildOutput = ""
	listDraftsOnly = false
	listJSON = false
	checkLinks = false
	checkExternal = false
	checkJSON = false
	checkTimeout = 10 * time.Second
	checkConcurrency = 8
	servePort = 0
	serveDrafts = false
	serveNoWatch = false
	newTitle = ""
}

// writeSiteFixture writes a small but complete site source tree into a temp
// directory and returns its path, for use with --source.
func writeSiteFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"config.yaml": `title: Test Site
baseURL: https://example.org/
copyright: © 2026 Jane Doe
content:
  summaryLength: 30
`,
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
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}
