package fetch

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// subpageKeywords rank which internal links are worth a follow-up fetch.
// Contact-style pages surface emails; about/service pages describe the
// business better than a marketing homepage.
var subpageKeywords = []string{"contact", "about", "team", "service"}

var hrefRe = regexp.MustCompile(`(?i)href\s*=\s*["']([^"'#]+)["']`)

// CrawlFetcher fetches the homepage plus a bounded number of high-signal
// subpages, merging their text and emails into one document. Requests against
// the same site are paced by a shared limiter.
type CrawlFetcher struct {
	site        *SiteFetcher
	maxSubpages int
	limiter     *rate.Limiter
}

// NewCrawlFetcher wraps a SiteFetcher with subpage discovery.
func NewCrawlFetcher(site *SiteFetcher, maxSubpages int) *CrawlFetcher {
	if maxSubpages <= 0 {
		maxSubpages = 3
	}
	return &CrawlFetcher{
		site:        site,
		maxSubpages: maxSubpages,
		limiter:     rate.NewLimiter(rate.Limit(2), 1),
	}
}

func (f *CrawlFetcher) Name() string { return "crawl" }

// Fetch retrieves the homepage and up to maxSubpages keyword-matched
// subpages. Subpage failures are tolerated; only a homepage failure fails
// the crawl.
func (f *CrawlFetcher) Fetch(ctx context.Context, rawURL string) *Result {
	home := f.site.Fetch(ctx, rawURL)
	if home.Failed() {
		return home
	}

	// Discover candidate subpages from the raw homepage links.
	raw, _, ferr := f.site.get(ctx, home.URL)
	if ferr != nil {
		return home
	}
	candidates := discoverSubpages(home.URL, raw, f.maxSubpages)

	texts := []string{home.Text}
	emailLists := [][]string{home.Emails}
	for _, sub := range candidates {
		if err := f.limiter.Wait(ctx); err != nil {
			break
		}
		res := f.site.Fetch(ctx, sub)
		if res.Failed() {
			zap.L().Debug("fetch: subpage skipped",
				zap.String("url", sub),
				zap.Error(res.Err),
			)
			continue
		}
		texts = append(texts, res.Text)
		emailLists = append(emailLists, res.Emails)
	}

	merged := &Result{
		URL:    home.URL,
		Text:   strings.Join(texts, "\n\n---\n\n"),
		Emails: MergeEmails(emailLists...),
	}
	zap.L().Info("fetch: crawl complete",
		zap.String("url", home.URL),
		zap.Int("pages", len(texts)),
		zap.Int("emails", len(merged.Emails)),
	)
	return merged
}

// discoverSubpages extracts same-host links whose path matches a subpage
// keyword, ranked by keyword order, capped at limit.
func discoverSubpages(baseURL, html string, limit int) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{normalizePath(base.Path): {}}
	byKeyword := make(map[string][]string)
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		ref, err := url.Parse(strings.TrimSpace(m[1]))
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			continue
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		path := normalizePath(resolved.Path)
		if _, ok := seen[path]; ok {
			continue
		}
		kw := matchKeyword(path)
		if kw == "" {
			continue
		}
		seen[path] = struct{}{}
		resolved.RawQuery = ""
		resolved.Fragment = ""
		byKeyword[kw] = append(byKeyword[kw], resolved.String())
	}

	var out []string
	for _, kw := range subpageKeywords {
		for _, u := range byKeyword[kw] {
			if len(out) >= limit {
				return out
			}
			out = append(out, u)
		}
	}
	return out
}

func matchKeyword(path string) string {
	lower := strings.ToLower(path)
	for _, kw := range subpageKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

func normalizePath(p string) string {
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "/"
	}
	return p
}
