package check

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entjos/academic-kickstart/internal/config"
	"github.com/entjos/academic-kickstart/internal/content"
	"github.com/entjos/academic-kickstart/internal/site"
)

func assemble(t *testing.T, tree *content.Tree) *site.Site {
	t.Helper()
	return site.Assemble(&config.Config{}, tree, site.Options{IncludeDrafts: true})
}

func messages(problems []Problem) string {
	var sb strings.Builder
	for _, p := range problems {
		sb.WriteString(p.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestContent_CleanSite(t *testing.T) {
	end := date(2021, 8, 20)
	s := assemble(t, &content.Tree{
		Posts: []*content.Page{
			{Title: "Fine", Date: date(2026, 1, 1), SourcePath: "post/fine.md"},
		},
		Profiles: []*content.Profile{{
			Username:    "admin",
			DisplayName: "Jane Doe",
			Superuser:   true,
			Education:   []content.Course{{Course: "PhD", Institution: "Example University"}},
			Social:      []content.SocialLink{{Icon: "github", IconPack: "fab", Link: "https://github.com/jdoe"}},
			Page:        &content.Page{SourcePath: "authors/admin/_index.md"},
		}},
		Experience: &content.ExperienceWidget{
			WidgetHeader: content.WidgetHeader{Active: true},
			Items: []content.Experience{
				{Title: "Current", DateStart: date(2020, 6, 1)},
				{Title: "Past", DateStart: date(2018, 9, 1), DateEnd: &end, CompanyURL: "https://example.org"},
			},
			Page: &content.Page{SourcePath: "home/experience.md"},
		},
	})

	problems := Content(s)
	assert.Empty(t, problems, "got: %s", messages(problems))
}

func TestContent_PostProblems(t *testing.T) {
	s := assemble(t, &content.Tree{
		Posts: []*content.Page{
			{Title: "", Date: date(2026, 1, 1), SourcePath: "post/untitled.md"},
			{Title: "Undated", SourcePath: "post/undated.md"},
		},
	})

	problems := Content(s)
	require.Len(t, problems, 2)
	assert.Contains(t, messages(problems), "post/untitled.md: post has no title")
	assert.Contains(t, messages(problems), "post/undated.md: post has no date")
	assert.True(t, HasErrors(problems))
}

func TestContent_MultipleSuperusers(t *testing.T) {
	profile := func(name string) *content.Profile {
		return &content.Profile{
			Username:    name,
			DisplayName: name,
			Superuser:   true,
			Page:        &content.Page{SourcePath: "authors/" + name + "/_index.md"},
		}
	}
	s := assemble(t, &content.Tree{Profiles: []*content.Profile{profile("a"), profile("b")}})

	problems := Content(s)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "2 profiles are marked superuser")
	assert.Equal(t, "content/authors", problems[0].Source)
}

func TestContent_ProfileFieldProblems(t *testing.T) {
	s := assemble(t, &content.Tree{
		Profiles: []*content.Profile{{
			Username:  "admin",
			Superuser: true,
			Education: []content.Course{{Course: "", Institution: ""}},
			Social: []content.SocialLink{
				{Icon: "", Link: ""},
				{Icon: "globe", IconPack: "fas", Link: "www.example.org"},
			},
			Organizations: []content.Organization{{Name: "Example", URL: "ftp://example.org"}},
			Page:          &content.Page{SourcePath: "authors/admin/_index.md"},
		}},
	})

	out := messages(Content(s))
	assert.Contains(t, out, "profile has no display name")
	assert.Contains(t, out, "education entry 1 has no course")
	assert.Contains(t, out, "education entry 1 has no institution")
	assert.Contains(t, out, "social link 1 has no icon")
	assert.Contains(t, out, "social link 1 has no link")
	assert.Contains(t, out, `url "www.example.org" has no scheme`)
	assert.Contains(t, out, `unsupported scheme "ftp"`)
}

func TestContent_WidgetDateProblems(t *testing.T) {
	early := date(2019, 1, 1)
	s := assemble(t, &content.Tree{
		Experience: &content.ExperienceWidget{
			WidgetHeader: content.WidgetHeader{Active: true},
			Items: []content.Experience{
				{Title: "Backwards", DateStart: date(2020, 1, 1), DateEnd: &early},
				{Title: "", DateStart: date(2020, 1, 1)},
				{Title: "Unstarted"},
			},
			Page: &content.Page{SourcePath: "home/experience.md"},
		},
		Accomplishments: &content.AccomplishmentsWidget{
			WidgetHeader: content.WidgetHeader{Active: true},
			Items: []content.Accomplishment{
				{Title: "Badly Linked", DateStart: date(2020, 1, 1), CertificateURL: "not a url at all\x7f"},
			},
			Page: &content.Page{SourcePath: "home/accomplishments.md"},
		},
	})

	// Assembly sorts current positions first, so the untitled entry
	// (current, latest start) is reported as entry 1.
	out := messages(Content(s))
	assert.Contains(t, out, "experience Backwards ends before it starts")
	assert.Contains(t, out, "experience entry 1 has no title")
	assert.Contains(t, out, "experience Unstarted has no start date")
	assert.Contains(t, out, `accomplishment "Badly Linked" certificate_url`)
}

func TestBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{"empty", "", true},
		{"site relative", "/post/a/", true},
		{"fragment", "#about", true},
		{"https", "https://example.org/x", true},
		{"http", "http://example.org", true},
		{"mailto", "mailto:jane@example.org", true},
		{"mailto without address", "mailto:", false},
		{"no scheme", "www.example.org", false},
		{"http without host", "http:///path", false},
		{"ftp", "ftp://example.org", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := badURL(tt.url)
			if tt.ok {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Problem{{Severity: SeverityWarning}}))
	assert.True(t, HasErrors([]Problem{{Severity: SeverityWarning}, {Severity: SeverityError}}))
}
