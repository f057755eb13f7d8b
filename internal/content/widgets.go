package content

import (
	"fmt"
	"html/template"
	"time"
)

// WidgetHeader is the front-matter block shared by the homepage widget
// files: whether the section is shown, its ordering weight, and how its
// dates are displayed.
type WidgetHeader struct {
	Widget     string
	Headless   bool
	Active     bool
	Weight     int
	Title      string
	Subtitle   string
	DateFormat string
}

// Experience is one position held: title, organization and an optional end
// date. A nil DateEnd means the position is current.
type Experience struct {
	Title       string
	Company     string
	CompanyURL  string
	Location    string
	DateStart   time.Time
	DateEnd     *time.Time
	Description string
	HTML        template.HTML
}

// Current reports whether the position has no end date.
func (e Experience) Current() bool { return e.DateEnd == nil }

// Accomplishment is one certificate, award or similar record.
type Accomplishment struct {
	Organization    string
	OrganizationURL string
	Title           string
	URL             string
	CertificateURL  string
	DateStart       time.Time
	DateEnd         *time.Time
	Description     string
	HTML            template.HTML
}

// ExperienceWidget is the parsed experience section of the homepage.
type ExperienceWidget struct {
	WidgetHeader
	Items []Experience
	Page  *Page
}

// AccomplishmentsWidget is the parsed accomplishments section of the
// homepage.
type AccomplishmentsWidget struct {
	WidgetHeader
	Items []Accomplishment
	Page  *Page
}

// experienceMeta mirrors the TOML front matter of content/home/experience.md.
type experienceMeta struct {
	widgetMeta `yaml:",inline"`
	Experience []experienceItemMeta `yaml:"experience" toml:"experience"`
}

type experienceItemMeta struct {
	Title       string `yaml:"title" toml:"title"`
	Company     string `yaml:"company" toml:"company"`
	CompanyURL  string `yaml:"company_url" toml:"company_url"`
	Location    string `yaml:"location" toml:"location"`
	DateStart   any    `yaml:"date_start" toml:"date_start"`
	DateEnd     any    `yaml:"date_end" toml:"date_end"`
	Description string `yaml:"description" toml:"description"`
}

// accomplishmentsMeta mirrors content/home/accomplishments.md, which names
// its records [[item]].
type accomplishmentsMeta struct {
	widgetMeta `yaml:",inline"`
	Items      []accomplishmentItemMeta `yaml:"item" toml:"item"`
}

type accomplishmentItemMeta struct {
	Organization    string `yaml:"organization" toml:"organization"`
	OrganizationURL string `yaml:"organization_url" toml:"organization_url"`
	Title           string `yaml:"title" toml:"title"`
	URL             string `yaml:"url" toml:"url"`
	CertificateURL  string `yaml:"certificate_url" toml:"certificate_url"`
	DateStart       any    `yaml:"date_start" toml:"date_start"`
	DateEnd         any    `yaml:"date_end" toml:"date_end"`
	Description     string `yaml:"description" toml:"description"`
}

type widgetMeta struct {
	Widget     string `yaml:"widget" toml:"widget"`
	Headless   bool   `yaml:"headless" toml:"headless"`
	Active     bool   `yaml:"active" toml:"active"`
	Weight     int    `yaml:"weight" toml:"weight"`
	Title      string `yaml:"title" toml:"title"`
	Subtitle   string `yaml:"subtitle" toml:"subtitle"`
	DateFormat string `yaml:"date_format" toml:"date_format"`
}

func (m widgetMeta) header() WidgetHeader {
	h := WidgetHeader(m)
	if h.DateFormat == "" {
		h.DateFormat = "Jan 2006"
	}
	return h
}

// dateRange parses a widget record's start and end values. The end date is
// optional: an absent or empty value means the record is current.
func dateRange(start, end any) (time.Time, *time.Time, error) {
	ds, err := ParseDate(start)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("date_start: %w", err)
	}
	de, err := ParseDate(end)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("date_end: %w", err)
	}
	if de.IsZero() {
		return ds, nil, nil
	}
	return ds, &de, nil
}
