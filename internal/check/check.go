package check

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/entjos/academic-kickstart/internal/content"
	"github.com/entjos/academic-kickstart/internal/site"
)

// Severity grades a finding. Errors fail the check run, warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is a single finding against the site content or the built
// output.
type Problem struct {
	Severity Severity `json:"severity"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Source, p.Message)
}

// HasErrors reports whether any problem carries error severity.
func HasErrors(problems []Problem) bool {
	for _, p := range problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Content validates the loaded site: post metadata, the author profiles
// and the homepage widgets. Drafts are included, since a broken draft
// becomes a broken post the moment it is published.
func Content(s *site.Site) []Problem {
	var problems []Problem
	problems = append(problems, checkPosts(s.AllPosts)...)
	problems = append(problems, checkProfiles(s.Profiles)...)
	problems = append(problems, checkExperience(s.Experience)...)
	problems = append(problems, checkAccomplishments(s.Accomplishments)...)
	return problems
}

func errorAt(source, format string, args ...any) Problem {
	return Problem{Severity: SeverityError, Source: source, Message: fmt.Sprintf(format, args...)}
}

func checkPosts(posts []*content.Page) []Problem {
	var problems []Problem
	for _, p := range posts {
		if strings.TrimSpace(p.Title) == "" {
			problems = append(problems, errorAt(p.SourcePath, "post has no title"))
		}
		if p.Date.IsZero() {
			problems = append(problems, errorAt(p.SourcePath, "post has no date"))
		}
	}
	return problems
}

func checkProfiles(profiles []*content.Profile) []Problem {
	var problems []Problem
	var superusers []string
	for _, pr := range profiles {
		src := pr.Page.SourcePath
		if pr.Superuser {
			superusers = append(superusers, pr.Username)
		}
		if strings.TrimSpace(pr.DisplayName) == "" {
			problems = append(problems, errorAt(src, "profile has no display name"))
		}
		for i, c := range pr.Education {
			if strings.TrimSpace(c.Course) == "" {
				problems = append(problems, errorAt(src, "education entry %d has no course", i+1))
			}
			if strings.TrimSpace(c.Institution) == "" {
				problems = append(problems, errorAt(src, "education entry %d has no institution", i+1))
			}
		}
		for i, l := range pr.Social {
			if strings.TrimSpace(l.Icon) == "" {
				problems = append(problems, errorAt(src, "social link %d has no icon", i+1))
			}
			if strings.TrimSpace(l.Link) == "" {
				problems = append(problems, errorAt(src, "social link %d has no link", i+1))
			} else if reason := badURL(l.Link); reason != "" {
				problems = append(problems, errorAt(src, "social link %d: %s", i+1, reason))
			}
		}
		for _, org := range pr.Organizations {
			if reason := badURL(org.URL); reason != "" {
				problems = append(problems, errorAt(src, "organization %q: %s", org.Name, reason))
			}
		}
	}
	if len(superusers) > 1 {
		problems = append(problems, errorAt("content/authors",
			"%d profiles are marked superuser (%s), at most one is allowed",
			len(superusers), strings.Join(superusers, ", ")))
	}
	return problems
}

func checkExperience(w *content.ExperienceWidget) []Problem {
	if w == nil {
		return nil
	}
	var problems []Problem
	src := w.Page.SourcePath
	for i, e := range w.Items {
		label := e.Title
		if label == "" {
			label = fmt.Sprintf("entry %d", i+1)
			problems = append(problems, errorAt(src, "experience entry %d has no title", i+1))
		}
		problems = append(problems, checkRange(src, "experience "+label, e.DateStart, e.DateEnd)...)
		if reason := badURL(e.CompanyURL); reason != "" {
			problems = append(problems, errorAt(src, "experience %q company_url: %s", label, reason))
		}
	}
	return problems
}

func checkAccomplishments(w *content.AccomplishmentsWidget) []Problem {
	if w == nil {
		return nil
	}
	var problems []Problem
	src := w.Page.SourcePath
	for i, a := range w.Items {
		label := a.Title
		if label == "" {
			label = fmt.Sprintf("entry %d", i+1)
			problems = append(problems, errorAt(src, "accomplishment entry %d has no title", i+1))
		}
		problems = append(problems, checkRange(src, "accomplishment "+label, a.DateStart, a.DateEnd)...)
		urls := []struct {
			field string
			value string
		}{
			{"organization_url", a.OrganizationURL},
			{"url", a.URL},
			{"certificate_url", a.CertificateURL},
		}
		for _, u := range urls {
			if reason := badURL(u.value); reason != "" {
				problems = append(problems, errorAt(src, "accomplishment %q %s: %s", label, u.field, reason))
			}
		}
	}
	return problems
}

func checkRange(source, label string, start time.Time, end *time.Time) []Problem {
	var problems []Problem
	if start.IsZero() {
		problems = append(problems, errorAt(source, "%s has no start date", label))
	}
	if end != nil && !start.IsZero() && end.Before(start) {
		problems = append(problems, errorAt(source, "%s ends before it starts", label))
	}
	return problems
}

// badURL reports why a URL value is unusable, or "" when it is fine.
// Empty values are fine: the fields are optional. Site-relative paths
// and fragments are left to the link checker.
func badURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "#") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid url %q", raw)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Sprintf("url %q has no host", raw)
		}
		return ""
	case "mailto":
		if u.Opaque == "" {
			return fmt.Sprintf("mailto link %q has no address", raw)
		}
		return ""
	case "":
		return fmt.Sprintf("url %q has no scheme", raw)
	default:
		return fmt.Sprintf("url %q has unsupported scheme %q", raw, u.Scheme)
	}
}
