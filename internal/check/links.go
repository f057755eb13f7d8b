package check

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	aklog "github.com/entjos/academic-kickstart/internal/log"
)

// LinkCheckOptions tunes the link checker. External checking is opt-in
// since it talks to the network.
type LinkCheckOptions struct {
	External    bool
	Timeout     time.Duration
	Concurrency int
}

// LinkChecker scans the built output for broken references. Every
// href and src in every generated page is resolved: paths under the
// site's own base URL must exist in the publish directory, and with
// External set, remote URLs must answer with a non-error status.
type LinkChecker struct {
	publishDir  string
	base        *url.URL
	external    bool
	timeout     time.Duration
	concurrency int
	client      *http.Client
}

// NewLinkChecker builds a checker for a publish directory. base is the
// site's configured base URL, used to recognize absolute links that
// point back at the site itself.
func NewLinkChecker(publishDir string, base *url.URL, opts LinkCheckOptions) *LinkChecker {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	return &LinkChecker{
		publishDir:  publishDir,
		base:        base,
		external:    opts.External,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

// reference is one link occurrence: the target and the page it sits on.
type reference struct {
	target string
	source string
}

// Run walks every generated HTML page, extracts its references and
// verifies them. The returned problems are sorted by source page.
func (c *LinkChecker) Run(ctx context.Context) ([]Problem, error) {
	logger := aklog.WithComponent("check")

	internal, external, problems, err := c.collect()
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("internal", len(internal)).
		Int("external", len(external)).
		Msg("collected references")

	problems = append(problems, c.checkInternal(internal)...)

	if c.external {
		externalProblems, err := c.checkExternal(ctx, external)
		if err != nil {
			return nil, err
		}
		problems = append(problems, externalProblems...)
	}

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].Source != problems[j].Source {
			return problems[i].Source < problems[j].Source
		}
		return problems[i].Message < problems[j].Message
	})
	return problems, nil
}

// collect parses every HTML file under the publish directory and
// splits its references into internal paths and external URLs.
func (c *LinkChecker) collect() (internal []reference, external map[string][]string, problems []Problem, err error) {
	external = make(map[string][]string)

	err = filepath.WalkDir(c.publishDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, relErr := filepath.Rel(c.publishDir, p)
		if relErr != nil {
			return relErr
		}
		refs, parseErr := extractRefs(p)
		if parseErr != nil {
			problems = append(problems, errorAt(rel, "cannot parse page: %v", parseErr))
			return nil
		}
		pagePath := pageURLPath(rel)
		for _, raw := range refs {
			target, kind := c.classify(pagePath, raw)
			switch kind {
			case refInternal:
				internal = append(internal, reference{target: target, source: rel})
			case refExternal:
				external[target] = append(external[target], rel)
			case refMalformed:
				problems = append(problems, errorAt(rel, "malformed link %q", raw))
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scanning %s: %w", c.publishDir, err)
	}
	return internal, external, problems, nil
}

// extractRefs pulls every href and src attribute out of one page.
func extractRefs(htmlPath string) ([]string, error) {
	f, err := os.Open(htmlPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}

	var refs []string
	doc.Find("a[href], link[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			refs = append(refs, href)
		}
	})
	doc.Find("img[src], script[src], source[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			refs = append(refs, src)
		}
	})
	return refs, nil
}

type refKind int

const (
	refSkip refKind = iota
	refInternal
	refExternal
	refMalformed
)

// classify resolves one raw reference against the page it appears on.
// Internal references come back as absolute site paths.
func (c *LinkChecker) classify(pagePath, raw string) (string, refKind) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", refSkip
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", refMalformed
	}
	switch u.Scheme {
	case "mailto", "tel", "javascript", "data":
		return "", refSkip
	case "http", "https":
		if c.base != nil && u.Host == c.base.Host {
			return cleanSitePath(u.Path), refInternal
		}
		u.Fragment = ""
		return u.String(), refExternal
	case "":
		// Scheme-relative URLs (//host/path) are external.
		if u.Host != "" {
			u.Scheme = "https"
			u.Fragment = ""
			return u.String(), refExternal
		}
		page := url.URL{Path: pagePath}
		resolved := page.ResolveReference(u)
		return cleanSitePath(resolved.Path), refInternal
	default:
		return "", refMalformed
	}
}

// pageURLPath maps an output file back to the URL it serves.
// post/my-post/index.html serves /post/my-post/.
func pageURLPath(rel string) string {
	p := "/" + filepath.ToSlash(rel)
	if strings.HasSuffix(p, "/index.html") {
		return strings.TrimSuffix(p, "index.html")
	}
	return p
}

func cleanSitePath(p string) string {
	if p == "" {
		return "/"
	}
	trailing := strings.HasSuffix(p, "/")
	p = path.Clean(p)
	if p == "." || p == "/" {
		return "/"
	}
	if trailing {
		p += "/"
	}
	return p
}

// checkInternal verifies that every internal reference maps to a file
// in the publish directory. A path with a trailing slash must hold an
// index.html; a bare path may be either a file or a directory index.
func (c *LinkChecker) checkInternal(refs []reference) []Problem {
	var problems []Problem
	seen := make(map[string]bool)
	for _, ref := range refs {
		key := ref.source + "\x00" + ref.target
		if seen[key] {
			continue
		}
		seen[key] = true
		if !c.targetExists(ref.target) {
			problems = append(problems, errorAt(ref.source, "broken internal link %q", ref.target))
		}
	}
	return problems
}

func (c *LinkChecker) targetExists(sitePath string) bool {
	rel := filepath.FromSlash(strings.TrimPrefix(sitePath, "/"))
	full := filepath.Join(c.publishDir, rel)

	info, err := os.Stat(full)
	if err == nil && !info.IsDir() {
		return true
	}
	if err == nil && info.IsDir() {
		_, err = os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	return false
}

// checkExternal requests every distinct external URL once. An error
// status is a hard problem; a transport failure is only a warning,
// since the network may simply be unavailable.
func (c *LinkChecker) checkExternal(ctx context.Context, targets map[string][]string) ([]Problem, error) {
	urls := make([]string, 0, len(targets))
	for u := range targets {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var (
		mu       sync.Mutex
		problems []Problem
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, target := range urls {
		target := target
		g.Go(func() error {
			status, err := c.fetchStatus(ctx, target)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				mu.Lock()
				problems = append(problems, Problem{
					Severity: SeverityWarning,
					Source:   firstSource(targets[target]),
					Message:  fmt.Sprintf("external link %q unreachable: %v", target, err),
				})
				mu.Unlock()
				return nil
			}
			if status >= http.StatusBadRequest {
				mu.Lock()
				problems = append(problems, errorAt(firstSource(targets[target]),
					"external link %q returned %d", target, status))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return problems, nil
}

// fetchStatus tries HEAD first and falls back to GET for servers that
// reject HEAD.
func (c *LinkChecker) fetchStatus(ctx context.Context, target string) (int, error) {
	status, err := c.request(ctx, http.MethodHead, target)
	if err != nil {
		return 0, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		return c.request(ctx, http.MethodGet, target)
	}
	return status, nil
}

func (c *LinkChecker) request(ctx context.Context, method, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "academic-link-check")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func firstSource(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	sorted := make([]string, len(sources))
	copy(sorted, sources)
	sort.Strings(sorted)
	return sorted[0]
}
