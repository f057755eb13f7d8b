// Package site assembles loaded content into the renderable site: draft
// filtering, ordering, taxonomy collection and the primary-profile pick.
package site

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/entjos/academic-kickstart/internal/config"
	"github.com/entjos/academic-kickstart/internal/content"
)

// Site holds everything the templates and generators see.
type Site struct {
	Config          *config.Config
	BuildID         string
	GeneratedAt     time.Time
	Profile         *content.Profile
	Profiles        []*content.Profile
	Posts           []*content.Page
	AllPosts        []*content.Page
	Pages           []*content.Page
	AllPages        []*content.Page
	Experience      *content.ExperienceWidget
	Accomplishments *content.AccomplishmentsWidget
	Tags            map[string][]*content.Page
	Categories      map[string][]*content.Page
}

// Options controls assembly.
type Options struct {
	IncludeDrafts bool
	Now           time.Time
}

// Assemble builds a Site from loaded content. Posts are sorted newest first
// with undated entries last, drafts and future-dated posts are dropped
// unless IncludeDrafts is set, and widget entries are ordered
// reverse-chronologically with current positions first.
func Assemble(cfg *config.Config, tree *content.Tree, opts Options) *Site {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	s := &Site{
		Config:      cfg,
		BuildID:     uuid.NewString(),
		GeneratedAt: now,
		AllPosts:    sortedByDate(tree.Posts),
		AllPages:    sortedByDate(tree.Pages),
		Profiles:    tree.Profiles,
		Tags:        map[string][]*content.Page{},
		Categories:  map[string][]*content.Page{},
	}

	for _, post := range s.AllPosts {
		if !opts.IncludeDrafts && !post.Current(now) {
			continue
		}
		s.Posts = append(s.Posts, post)
		for _, tag := range post.Tags {
			s.Tags[tag] = append(s.Tags[tag], post)
		}
		for _, cat := range post.Categories {
			s.Categories[cat] = append(s.Categories[cat], post)
		}
	}

	for _, page := range s.AllPages {
		if !opts.IncludeDrafts && !page.Current(now) {
			continue
		}
		s.Pages = append(s.Pages, page)
	}

	s.Profile = primaryProfile(tree.Profiles)

	if w := tree.Experience; w != nil && w.Active {
		s.Experience = w
		sortExperience(w.Items)
	}
	if w := tree.Accomplishments; w != nil && w.Active {
		s.Accomplishments = w
		sortAccomplishments(w.Items)
	}

	return s
}

// primaryProfile picks the profile marked superuser; with none (or several)
// marked, the first by username wins and the check command reports the
// inconsistency.
func primaryProfile(profiles []*content.Profile) *content.Profile {
	if len(profiles) == 0 {
		return nil
	}
	sorted := make([]*content.Profile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Username < sorted[j].Username })
	for _, p := range sorted {
		if p.Superuser {
			return p
		}
	}
	return sorted[0]
}

func sortedByDate(pages []*content.Page) []*content.Page {
	out := make([]*content.Page, len(pages))
	copy(out, pages)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.IsZero() {
			return false
		}
		if out[j].Date.IsZero() {
			return true
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func sortExperience(items []content.Experience) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Current() != items[j].Current() {
			return items[i].Current()
		}
		return items[i].DateStart.After(items[j].DateStart)
	})
}

func sortAccomplishments(items []content.Accomplishment) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DateStart.After(items[j].DateStart)
	})
}

// Recent returns up to n of the newest visible posts.
func (s *Site) Recent(n int) []*content.Page {
	if n > len(s.Posts) {
		n = len(s.Posts)
	}
	return s.Posts[:n]
}

// TagNames returns the tag terms in alphabetical order.
func (s *Site) TagNames() []string { return sortedKeys(s.Tags) }

// CategoryNames returns the category terms in alphabetical order.
func (s *Site) CategoryNames() []string { return sortedKeys(s.Categories) }

func sortedKeys(m map[string][]*content.Page) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AbsURL joins a site-relative path with the configured base URL. Without a
// base URL the path is returned as-is, keeping links relative.
func (s *Site) AbsURL(path string) string {
	if s.Config == nil || s.Config.BaseURL == "" {
		return path
	}
	return s.Config.BaseURL + "/" + strings.TrimLeft(path, "/")
}
