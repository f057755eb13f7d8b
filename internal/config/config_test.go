package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "Academic Kickstart", cfg.Title)
	assert.Equal(t, "", cfg.BaseURL)
	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, "layouts", cfg.Content.LayoutsDir)
	assert.Equal(t, "static", cfg.Content.StaticDir)
	assert.False(t, cfg.Content.BuildDrafts)
	assert.Equal(t, "Jan 2, 2006", cfg.Content.DateFormat)
	assert.Equal(t, 70, cfg.Content.SummaryLen)
	assert.Equal(t, 15, cfg.Feed.Limit)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 1313, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Server.RateLimit)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
title: My Site
baseURL: https://example.org/
copyright: © 2026 Me
content:
  summaryLength: 30
server:
  port: 8080
params:
  description: a test site
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, "My Site", cfg.Title)
	assert.Equal(t, "https://example.org", cfg.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, "© 2026 Me", cfg.Copyright)
	assert.Equal(t, 30, cfg.Content.SummaryLen)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "a test site", cfg.Params["description"])

	assert.Equal(t, 15, cfg.Feed.Limit, "unset keys keep their defaults")
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ACADEMIC_TITLE", "From Env")

	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Title)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"port out of range", "server:\n  port: 70000\n"},
		{"empty output dir", "outputDir: \"\"\n"},
		{"negative feed limit", "feed:\n  limit: -1\n"},
		{"negative summary length", "content:\n  summaryLength: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.yaml), 0o644))

			_, err := Load("", dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validating config")
		})
	}
}

func TestPathResolution(t *testing.T) {
	cfg := &Config{
		SourceDir: filepath.Join("sites", "mine"),
		OutputDir: "public",
		Content: ContentConfig{
			Dir:        "content",
			LayoutsDir: "layouts",
			StaticDir:  "static",
		},
	}

	assert.Equal(t, filepath.Join("sites", "mine", "content"), cfg.ContentDir())
	assert.Equal(t, filepath.Join("sites", "mine", "layouts"), cfg.LayoutsDir())
	assert.Equal(t, filepath.Join("sites", "mine", "static"), cfg.StaticDir())
	assert.Equal(t, filepath.Join("sites", "mine", "public"), cfg.PublishDir())

	abs := &Config{SourceDir: "sites", OutputDir: string(filepath.Separator) + filepath.Join("var", "www")}
	assert.Equal(t, string(filepath.Separator)+filepath.Join("var", "www"), abs.PublishDir(), "absolute paths are kept")

	local := &Config{SourceDir: ".", OutputDir: "public"}
	assert.Equal(t, "public", local.PublishDir())
}
