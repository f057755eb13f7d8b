package check

import (
	"os"
	"path/filepath"

	"github.com/mmcdole/gofeed"
)

// Feed parses the generated feed back with a real feed reader and
// verifies the fields aggregators depend on are present.
func Feed(path string) []Problem {
	src := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return []Problem{errorAt(src, "cannot open feed: %v", err)}
	}
	defer f.Close()

	parsed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		return []Problem{errorAt(src, "feed does not parse: %v", err)}
	}

	var problems []Problem
	if parsed.Title == "" {
		problems = append(problems, errorAt(src, "feed has no title"))
	}
	if parsed.Link == "" {
		problems = append(problems, errorAt(src, "feed has no link"))
	}
	for i, item := range parsed.Items {
		if item.Title == "" {
			problems = append(problems, errorAt(src, "feed item %d has no title", i+1))
		}
		if item.Link == "" {
			problems = append(problems, errorAt(src, "feed item %d has no link", i+1))
		}
		if item.PublishedParsed == nil {
			problems = append(problems, errorAt(src, "feed item %d has no publication date", i+1))
		}
	}
	return problems
}
