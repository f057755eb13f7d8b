package build

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/entjos/academic-kickstart/internal/site"
)

// RSS 2.0 document structure for the generated feed.
type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Generator     string    `xml:"generator"`
	Copyright     string    `xml:"copyright,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category,omitempty"`
	Description string   `xml:"description"`
}

// WriteFeed emits the RSS feed for the newest posts, capped at
// Feed.Limit. Descriptions carry the plain-text summary unless
// Feed.FullContent asks for the rendered body.
func WriteFeed(path string, s *site.Site) error {
	doc := feedDoc(s)
	return writeAtomic(path, func(w io.Writer) error {
		return writeXML(w, doc)
	})
}

func feedDoc(s *site.Site) rssDoc {
	cfg := s.Config
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         cfg.Title,
			Link:          s.AbsURL("/"),
			Description:   fmt.Sprintf("Recent posts on %s", cfg.Title),
			Generator:     "academic",
			Copyright:     cfg.Copyright,
			LastBuildDate: s.GeneratedAt.Format(time.RFC1123Z),
		},
	}

	posts := s.Posts
	if cfg.Feed.Limit > 0 && len(posts) > cfg.Feed.Limit {
		posts = posts[:cfg.Feed.Limit]
	}
	for _, p := range posts {
		item := rssItem{
			Title:       p.Title,
			Link:        s.AbsURL(p.Permalink),
			GUID:        s.AbsURL(p.Permalink),
			PubDate:     p.Date.Format(time.RFC1123Z),
			Categories:  p.Categories,
			Description: p.Summary,
		}
		if cfg.Feed.FullContent {
			item.Description = string(p.HTML)
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}
	return doc
}

func writeXML(w io.Writer, doc any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding xml: %w", err)
	}
	return enc.Close()
}
