package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entjos/academic-kickstart/internal/output"
)

var (
	listDraftsOnly bool
	listJSON       bool
)

// postRow is one line of the listing, shared by the table and JSON forms.
type postRow struct {
	Date      string `json:"date,omitempty"`
	Title     string `json:"title"`
	Draft     bool   `json:"draft"`
	Permalink string `json:"permalink"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the site's posts",
	Long: `The list command prints every post with its date, draft status and
permalink, newest first. Use --drafts to narrow the listing to unpublished
posts, --json for machine-readable output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSite(true)
		if err != nil {
			return err
		}

		rows := []postRow{}
		for _, p := range s.AllPosts {
			if listDraftsOnly && !p.Draft {
				continue
			}
			date := ""
			if !p.Date.IsZero() {
				date = p.Date.Format("2006-01-02")
			}
			rows = append(rows, postRow{Date: date, Title: p.Title, Draft: p.Draft, Permalink: p.Permalink})
		}

		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rows); err != nil {
				return fmt.Errorf("encoding posts: %w", err)
			}
			return nil
		}

		table := output.NewTable(cmd.OutOrStdout(), []string{"date", "title", "draft", "permalink"})
		for _, r := range rows {
			draft := ""
			if r.Draft {
				draft = "yes"
			}
			table.AddRow([]string{r.Date, r.Title, draft, r.Permalink})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listDraftsOnly, "drafts", false, "only list draft posts")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
