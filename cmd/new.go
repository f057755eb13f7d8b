package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entjos/academic-kickstart/internal/content"
)

// postFrontMatter is the scaffold front matter for a new post, in the
// order it should appear in the file.
type postFrontMatter struct {
	Title      string   `yaml:"title"`
	Subtitle   string   `yaml:"subtitle"`
	Summary    string   `yaml:"summary"`
	Authors    []string `yaml:"authors"`
	Tags       []string `yaml:"tags"`
	Categories []string `yaml:"categories"`
	Date       string   `yaml:"date"`
	Draft      bool     `yaml:"draft"`
}

var newTitle string

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Scaffold a new piece of content",
	Long: `The new command creates a content file with draft front matter.
The path is relative to the content directory; a path without a slash
lands under post/. Paths without an .md extension become page bundles
(a directory holding index.md), so images can live next to the text.
The title is derived from the name unless --title is given.

  academic new bayesian-survival-models
  academic new post/2026-updates.md --title "Updates for 2026"
  academic new contact.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.ToSlash(strings.Trim(args[0], "/"))
		if target == "" {
			return fmt.Errorf("empty content path")
		}
		if !strings.Contains(target, "/") {
			target = "post/" + target
		}

		name := strings.TrimSuffix(filepath.Base(target), ".md")
		slug := content.Slugify(name)
		if slug == "" {
			return fmt.Errorf("cannot derive a slug from %q", name)
		}

		var path string
		if strings.HasSuffix(target, ".md") {
			path = filepath.Join(cfg.ContentDir(), filepath.FromSlash(filepath.Dir(target)), slug+".md")
		} else {
			path = filepath.Join(cfg.ContentDir(), filepath.FromSlash(filepath.Dir(target)), slug, "index.md")
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		title := newTitle
		if title == "" {
			title = content.TitleFromFilename(slug + ".md")
		}
		fm := postFrontMatter{
			Title:      title,
			Authors:    defaultAuthors(),
			Tags:       []string{},
			Categories: []string{},
			Date:       time.Now().Format(time.RFC3339),
			Draft:      true,
		}
		data, err := yaml.Marshal(&fm)
		if err != nil {
			return fmt.Errorf("marshaling front matter: %w", err)
		}

		var b strings.Builder
		b.WriteString("---\n")
		b.Write(data)
		b.WriteString("---\n\nWrite your content here.\n")

		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		printer.Success("created %s", path)
		return nil
	},
}

// defaultAuthors returns the superuser's username when one exists, so
// new posts are attributed to the site owner.
func defaultAuthors() []string {
	s, err := loadSite(true)
	if err != nil || s.Profile == nil {
		return []string{}
	}
	return []string{s.Profile.Username}
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVar(&newTitle, "title", "", "title for the new content (default derives from the name)")
}
