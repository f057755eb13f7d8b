package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupBuildTest(t *testing.T) string {
	t.Helper()
	resetGlobals()
	return writeSiteFixture(t)
}

func TestBuildCommand(t *testing.T) {
	dir := setupBuildTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"build", "--source", dir, "--quiet"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build command failed: %v", err)
	}

	for _, rel := range []string{
		"public/index.html",
		"public/post/hello-world/index.html",
		"public/post/index.html",
		"public/about/index.html",
		"public/css/main.css",
		"public/feed.xml",
		"public/sitemap.xml",
		"public/index.json",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected build to write %s: %v", rel, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "public", "post", "drafty")); !os.IsNotExist(err) {
		t.Error("expected draft post to be excluded from the output")
	}
}

func TestBuildCommand_Drafts(t *testing.T) {
	dir := setupBuildTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"build", "--source", dir, "--quiet", "-D"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build -D failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "public", "post", "drafty", "index.html"))
	if err != nil {
		t.Fatalf("expected draft post in output: %v", err)
	}
	if !strings.Contains(string(data), "Not yet.") {
		t.Errorf("draft page missing its body, got:\n%s", data)
	}
}

func TestBuildCommand_OutputAndBaseURL(t *testing.T) {
	dir := setupBuildTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"build", "--source", dir, "--quiet", "-o", "dist", "--base-url", "https://other.example/"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build with overrides failed: %v", err)
	}

	home, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	if err != nil {
		t.Fatalf("expected output under dist/: %v", err)
	}
	if !strings.Contains(string(home), `href="https://other.example/post/hello-world/"`) {
		t.Errorf("expected links on the overridden base URL, got:\n%s", home)
	}
}

func TestBuildCommand_MissingContent(t *testing.T) {
	setupBuildTest(t)
	empty := t.TempDir()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"build", "--source", empty, "--quiet"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for a source tree without content/, got nil")
	}
	if !strings.Contains(err.Error(), "loading content") {
		t.Errorf("expected 'loading content' in error, got: %v", err)
	}
}
