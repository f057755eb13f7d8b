// Package cmd contains the CLI commands for academic.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entjos/academic-kickstart/internal/config"
	"github.com/entjos/academic-kickstart/internal/content"
	aklog "github.com/entjos/academic-kickstart/internal/log"
	"github.com/entjos/academic-kickstart/internal/markdown"
	"github.com/entjos/academic-kickstart/internal/output"
	"github.com/entjos/academic-kickstart/internal/site"
)

var (
	cfgFile   string
	sourceDir string
	verbose   bool
	quiet     bool

	cfg     *config.Config
	printer *output.Printer
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "academic",
	Short: "Build and serve a personal academic website",
	Long: `academic builds a personal academic website from Markdown content:
an author profile, experience and accomplishment sections, and a blog.

The content/ directory holds the Markdown sources, layouts/ the HTML
templates and static/ the assets copied verbatim.

Example usage:
  academic build               # Render the site into public/
  academic serve               # Serve locally and rebuild on change
  academic check --links       # Validate content and built links
  academic new my-first-post   # Scaffold a new blog post
  academic list                # List posts with their dates`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml in the source directory)")
	rootCmd.PersistentFlags().StringVarP(&sourceDir, "source", "s", "", "source directory (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "errors only")
}

// initConfig loads the configuration and sets up logging and output.
func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile, sourceDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "error"
	}
	aklog.Configure(aklog.Config{Level: level, Version: version})

	printer = output.New(quiet)
	return nil
}

// loadSite reads the content tree and assembles the site model.
func loadSite(includeDrafts bool) (*site.Site, error) {
	loader := content.NewLoader(markdown.NewConverter(), content.LoaderOptions{
		Logger:        aklog.WithComponent("content"),
		SummaryLength: cfg.Content.SummaryLen,
	})
	tree, err := loader.Load(cfg.ContentDir())
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return site.Assemble(cfg, tree, site.Options{IncludeDrafts: includeDrafts}), nil
}
