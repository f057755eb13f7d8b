package build

import (
	"encoding/json"
	"io"
	"time"

	"github.com/entjos/academic-kickstart/internal/site"
)

type indexEntry struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary,omitempty"`
	Permalink  string   `json:"permalink"`
	Date       string   `json:"date"`
	Tags       []string `json:"tags,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// WriteSearchIndex emits a JSON index of visible posts for the
// client-side search box.
func WriteSearchIndex(path string, s *site.Site) error {
	entries := make([]indexEntry, 0, len(s.Posts))
	for _, p := range s.Posts {
		entries = append(entries, indexEntry{
			Title:      p.Title,
			Summary:    p.Summary,
			Permalink:  s.AbsURL(p.Permalink),
			Date:       p.Date.Format(time.RFC3339),
			Tags:       p.Tags,
			Categories: p.Categories,
		})
	}
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	})
}
