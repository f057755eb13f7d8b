package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/entjos/academic-kickstart/internal/build"
	"github.com/entjos/academic-kickstart/internal/check"
)

var (
	checkLinks       bool
	checkExternal    bool
	checkJSON        bool
	checkTimeout     time.Duration
	checkConcurrency int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the site content and links",
	Long: `The check command validates the content tree: every post needs a
title and a date, at most one author profile may be marked superuser,
education and social entries must be complete, and date ranges must be
ordered. Drafts are included.

With --links the site is built and every internal reference in the
output is resolved against the generated files; --external also
requests every outbound URL once. The generated feed is parsed back
with a feed reader as part of the link run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkExternal {
			checkLinks = true
		}

		s, err := loadSite(true)
		if err != nil {
			return err
		}

		problems := check.Content(s)

		if checkLinks {
			if _, err := build.Build(cmd.Context(), cfg, s); err != nil {
				return fmt.Errorf("building site for link check: %w", err)
			}
			base, err := url.Parse(cfg.BaseURL)
			if err != nil {
				return fmt.Errorf("parsing baseURL: %w", err)
			}
			checker := check.NewLinkChecker(cfg.PublishDir(), base, check.LinkCheckOptions{
				External:    checkExternal,
				Timeout:     checkTimeout,
				Concurrency: checkConcurrency,
			})
			linkProblems, err := checker.Run(cmd.Context())
			if err != nil {
				return err
			}
			problems = append(problems, linkProblems...)
			problems = append(problems, check.Feed(filepath.Join(cfg.PublishDir(), "feed.xml"))...)
		}

		errCount := 0
		for _, p := range problems {
			switch p.Severity {
			case check.SeverityWarning:
				if !checkJSON {
					printer.Warning("%s", p)
				}
			default:
				errCount++
				if !checkJSON {
					printer.Error("%s", p)
				}
			}
		}

		if checkJSON {
			if problems == nil {
				problems = []check.Problem{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(problems); err != nil {
				return fmt.Errorf("encoding problems: %w", err)
			}
		}

		if errCount > 0 {
			return fmt.Errorf("check found %d error(s)", errCount)
		}
		if !checkJSON {
			printer.Success("no errors found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkLinks, "links", false, "build the site and verify internal links")
	checkCmd.Flags().BoolVar(&checkExternal, "external", false, "also request external links (implies --links)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output problems as JSON")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "timeout per external request")
	checkCmd.Flags().IntVar(&checkConcurrency, "concurrency", 8, "concurrent external requests")
}
