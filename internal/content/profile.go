package content

import (
	"fmt"
	"html/template"
)

// Profile is an author profile record, loaded from
// content/authors/<username>/_index.md. The markdown body is the long-form
// biography.
type Profile struct {
	Username      string
	DisplayName   string
	Role          string
	Superuser     bool
	Avatar        string
	Organizations []Organization
	Bio           string
	Interests     []string
	Education     []Course
	Social        []SocialLink
	Email         string
	UserGroups    []string
	BioHTML       template.HTML
	Page          *Page
}

// Organization is an affiliation shown under the author's name.
type Organization struct {
	Name string `yaml:"name" toml:"name"`
	URL  string `yaml:"url" toml:"url"`
}

// Course is one education entry.
type Course struct {
	Course      string `yaml:"course" toml:"course"`
	Institution string `yaml:"institution" toml:"institution"`
	Year        string `yaml:"year" toml:"year"`
}

// SocialLink is one social/contact link with its themed icon identifier.
type SocialLink struct {
	Icon     string `yaml:"icon" toml:"icon"`
	IconPack string `yaml:"icon_pack" toml:"icon_pack"`
	Link     string `yaml:"link" toml:"link"`
}

// profileMeta mirrors the front-matter layout of an author page.
type profileMeta struct {
	Title         string         `yaml:"title" toml:"title"`
	Role          string         `yaml:"role" toml:"role"`
	Superuser     bool           `yaml:"superuser" toml:"superuser"`
	Avatar        string         `yaml:"avatar" toml:"avatar"`
	Organizations []Organization `yaml:"organizations" toml:"organizations"`
	Bio           string         `yaml:"bio" toml:"bio"`
	Interests     []string       `yaml:"interests" toml:"interests"`
	Education     struct {
		Courses []courseMeta `yaml:"courses" toml:"courses"`
	} `yaml:"education" toml:"education"`
	Social     []SocialLink `yaml:"social" toml:"social"`
	Email      string       `yaml:"email" toml:"email"`
	UserGroups []string     `yaml:"user_groups" toml:"user_groups"`
}

// courseMeta accepts both quoted and bare years.
type courseMeta struct {
	Course      string `yaml:"course" toml:"course"`
	Institution string `yaml:"institution" toml:"institution"`
	Year        any    `yaml:"year" toml:"year"`
}

func (m profileMeta) toProfile(username string, page *Page) *Profile {
	p := &Profile{
		Username:      username,
		DisplayName:   m.Title,
		Role:          m.Role,
		Superuser:     m.Superuser,
		Avatar:        m.Avatar,
		Organizations: m.Organizations,
		Bio:           m.Bio,
		Interests:     m.Interests,
		Social:        m.Social,
		Email:         m.Email,
		UserGroups:    m.UserGroups,
		Page:          page,
	}
	for _, c := range m.Education.Courses {
		p.Education = append(p.Education, Course{
			Course:      c.Course,
			Institution: c.Institution,
			Year:        yearString(c.Year),
		})
	}
	if p.DisplayName == "" {
		p.DisplayName = page.Title
	}
	return p
}

func yearString(v any) string {
	switch y := v.(type) {
	case nil:
		return ""
	case string:
		return y
	default:
		return fmt.Sprintf("%v", y)
	}
}
