// Package build renders the assembled site into the output directory:
// pages, the homepage with its widget sections, list and taxonomy pages,
// the RSS feed, the sitemap and the search index.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"

	"github.com/entjos/academic-kickstart/internal/config"
	"github.com/entjos/academic-kickstart/internal/content"
	aklog "github.com/entjos/academic-kickstart/internal/log"
	"github.com/entjos/academic-kickstart/internal/site"
)

// Stats summarises a finished build.
type Stats struct {
	Pages    int
	Duration time.Duration
	BuildID  string
}

// Build renders the site into cfg.PublishDir(): the output directory is
// recreated from scratch, static assets are copied, every page is rendered
// concurrently and written atomically, and the generated artifacts (feed,
// sitemap, search index) are emitted last.
func Build(ctx context.Context, cfg *config.Config, s *site.Site) (Stats, error) {
	start := time.Now()
	logger := aklog.WithComponent("build")

	layoutsDir := cfg.LayoutsDir()
	if _, err := os.Stat(layoutsDir); os.IsNotExist(err) {
		return Stats{}, fmt.Errorf("layouts directory %s not found", layoutsDir)
	}

	// Parse templates before touching the output directory, so a broken
	// layout leaves the previous build on disk.
	templates, err := LoadTemplates(layoutsDir, s)
	if err != nil {
		return Stats{}, err
	}
	if !templates.Has(homeLayout) {
		return Stats{}, fmt.Errorf("homepage layout %s not found in %s", homeLayout, layoutsDir)
	}

	publishDir := cfg.PublishDir()
	if err := os.RemoveAll(publishDir); err != nil {
		return Stats{}, fmt.Errorf("cleaning output directory %s: %w", publishDir, err)
	}
	if err := os.MkdirAll(publishDir, os.ModePerm); err != nil {
		return Stats{}, fmt.Errorf("creating output directory %s: %w", publishDir, err)
	}

	staticDir := cfg.StaticDir()
	if _, err := os.Stat(staticDir); err == nil {
		if err := copyDirContents(staticDir, publishDir); err != nil {
			return Stats{}, fmt.Errorf("copying static assets: %w", err)
		}
	} else {
		logger.Debug().Str("dir", staticDir).Msg("no static directory, skipping copy")
	}

	jobs := collectJobs(templates, s)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outPath := outputPath(publishDir, job.permalink)
			err := writeAtomic(outPath, func(w io.Writer) error {
				return templates.Execute(w, job.layout, job.data)
			})
			if err != nil {
				return fmt.Errorf("rendering %s with %s: %w", job.permalink, job.layout, err)
			}
			logger.Debug().Str("page", job.permalink).Str("layout", job.layout).Msg("rendered")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	if err := WriteFeed(filepath.Join(publishDir, "feed.xml"), s); err != nil {
		return Stats{}, err
	}
	if err := WriteSitemap(filepath.Join(publishDir, "sitemap.xml"), s); err != nil {
		return Stats{}, err
	}
	if s.Config.Search.Enabled {
		if err := WriteSearchIndex(filepath.Join(publishDir, "index.json"), s); err != nil {
			return Stats{}, err
		}
	}

	stats := Stats{Pages: len(jobs), Duration: time.Since(start), BuildID: s.BuildID}
	logger.Info().
		Int("pages", stats.Pages).
		Str("build_id", s.BuildID).
		Dur("took", stats.Duration).
		Msg("site built")
	return stats, nil
}

type renderJob struct {
	permalink string
	layout    string
	data      any
}

// collectJobs lists every page to render. Headless widget sources never get
// pages of their own; their content surfaces on the homepage.
func collectJobs(templates *Templates, s *site.Site) []renderJob {
	jobs := []renderJob{{permalink: "/", layout: homeLayout, data: HomeContext{Site: s}}}

	for _, p := range s.Posts {
		jobs = append(jobs, renderJob{p.Permalink, templates.layoutFor(p), PageContext{Site: s, Page: p}})
	}
	for _, p := range s.Pages {
		jobs = append(jobs, renderJob{p.Permalink, templates.layoutFor(p), PageContext{Site: s, Page: p}})
	}

	if !templates.Has(listLayout) {
		aklog.WithComponent("build").Warn().Str("layout", listLayout).Msg("list layout missing, skipping index and taxonomy pages")
		return jobs
	}

	if len(s.Posts) > 0 {
		jobs = append(jobs, renderJob{"/post/", listLayout, ListContext{
			Site: s, Title: "Posts", Permalink: "/post/", Pages: s.Posts,
		}})
	}
	for _, term := range s.TagNames() {
		permalink := "/tags/" + content.Slugify(term) + "/"
		jobs = append(jobs, renderJob{permalink, listLayout, ListContext{
			Site: s, Title: term, Taxonomy: "tags", Term: term, Permalink: permalink, Pages: s.Tags[term],
		}})
	}
	for _, term := range s.CategoryNames() {
		permalink := "/categories/" + content.Slugify(term) + "/"
		jobs = append(jobs, renderJob{permalink, listLayout, ListContext{
			Site: s, Title: term, Taxonomy: "categories", Term: term, Permalink: permalink, Pages: s.Categories[term],
		}})
	}
	return jobs
}

// outputPath maps a permalink to its file under the publish directory:
// /post/my-entry/ becomes <publish>/post/my-entry/index.html.
func outputPath(publishDir, permalink string) string {
	rel := strings.Trim(permalink, "/")
	return filepath.Join(publishDir, filepath.FromSlash(rel), "index.html")
}

// writeAtomic writes a file through a renameio pending file: the target
// either keeps its previous content or receives the complete new content,
// never a truncated mix.
func writeAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("creating pending file for %s: %w", path, err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			aklog.WithComponent("build").Debug().Err(err).Str("path", path).Msg("cleanup pending file")
		}
	}()

	if err := write(pending); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// copyDirContents recursively copies the static tree into the output
// directory, preserving file modes.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("relativising %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(dstPath, os.ModePerm)
		}
		return copyFile(path, dstPath)
	})
}

func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcFile, err)
	}
	defer srcF.Close()

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dstFile, err)
	}
	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("copying %s to %s: %w", srcFile, dstFile, err)
	}

	if info, err := os.Stat(srcFile); err == nil {
		if err := os.Chmod(dstFile, info.Mode()); err != nil {
			aklog.WithComponent("build").Debug().Err(err).Str("path", dstFile).Msg("could not preserve file mode")
		}
	}
	return nil
}
