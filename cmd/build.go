package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/entjos/academic-kickstart/internal/build"
)

var (
	buildDrafts  bool
	buildBaseURL string
	buildOutput  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into the output directory",
	Long: `The build command loads the Markdown content, applies the HTML
layouts, copies static assets and writes the finished site into the
configured output directory (default public/). The RSS feed, the
sitemap and the search index are generated alongside the pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if buildBaseURL != "" {
			cfg.BaseURL = strings.TrimRight(buildBaseURL, "/")
		}
		if buildOutput != "" {
			cfg.OutputDir = buildOutput
		}

		s, err := loadSite(buildDrafts || cfg.Content.BuildDrafts)
		if err != nil {
			return err
		}
		stats, err := build.Build(cmd.Context(), cfg, s)
		if err != nil {
			return err
		}
		printer.Success("built %d pages in %s (output: %s)",
			stats.Pages, stats.Duration.Round(time.Millisecond), cfg.PublishDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVarP(&buildDrafts, "drafts", "D", false, "include draft posts")
	buildCmd.Flags().StringVar(&buildBaseURL, "base-url", "", "base URL for absolute links (overrides config)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory (overrides config)")
}
