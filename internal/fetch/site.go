package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

// browserUserAgent identifies the fetcher as a real browser. Many prospect
// sites reject unidentified clients outright.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// emailRe is deliberately permissive: it runs against the raw HTML as the
// first line of defense in case the analysis stage omits addresses.
var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Config tunes the site fetcher.
type Config struct {
	Timeout  time.Duration
	MaxChars int
}

// SiteFetcher issues a single static HTTP GET and converts the page to
// plaintext. The browser-rendering crawl variant is CrawlFetcher.
type SiteFetcher struct {
	client   *http.Client
	maxChars int
}

// NewSiteFetcher creates a SiteFetcher with bounded timeouts.
func NewSiteFetcher(cfg Config) *SiteFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = 15000
	}
	return &SiteFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxChars: maxChars,
	}
}

func (f *SiteFetcher) Name() string { return "site" }

// Fetch retrieves and cleans a single page. Emails found in the raw body are
// prepended to the returned text so downstream analyzers see them verbatim.
func (f *SiteFetcher) Fetch(ctx context.Context, rawURL string) *Result {
	targetURL := model.NormalizeURL(rawURL)
	result := &Result{URL: targetURL}

	body, status, ferr := f.get(ctx, targetURL)
	if ferr != nil {
		zap.L().Warn("fetch: site fetch failed",
			zap.String("url", targetURL),
			zap.String("kind", string(ferr.Kind)),
			zap.Int("status", ferr.Status),
			zap.String("message", ferr.Message),
		)
		result.Err = ferr
		return result
	}

	emails := ExtractEmails(body)
	text := StripHTML(body)
	if len(text) > f.maxChars {
		text = text[:f.maxChars]
	}

	result.Emails = emails
	result.Text = assembleDocument(targetURL, emails, text)

	zap.L().Info("fetch: site fetched",
		zap.String("url", targetURL),
		zap.Int("status", status),
		zap.Int("chars", len(text)),
		zap.Int("emails", len(emails)),
	)
	return result
}

// get performs the GET and maps failures onto the fetch taxonomy.
func (f *SiteFetcher) get(ctx context.Context, targetURL string) (string, int, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", 0, &FetchError{Kind: ErrUnknown, Message: err.Error()}
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", resp.StatusCode, &FetchError{
			Kind:    ErrHTTP,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("http status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", resp.StatusCode, &FetchError{Kind: ErrUnknown, Message: err.Error()}
	}
	return string(body), resp.StatusCode, nil
}

func classifyTransportError(err error) *FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return &FetchError{Kind: ErrTimeout, Message: "request timed out"}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: ErrTimeout, Message: "request timed out"}
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &FetchError{Kind: ErrConnection, Message: "connection refused or host unreachable"}
	}
	return &FetchError{Kind: ErrUnknown, Message: err.Error()}
}

// ExtractEmails pulls deduplicated email addresses from raw HTML, in order
// of first appearance.
func ExtractEmails(raw string) []string {
	seen := make(map[string]struct{})
	var emails []string
	for _, m := range emailRe.FindAllString(raw, -1) {
		lower := strings.ToLower(m)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		emails = append(emails, lower)
	}
	return emails
}

// assembleDocument builds the text document handed to the analyzers: source
// URL, extracted emails, then the cleaned page content.
func assembleDocument(url string, emails []string, text string) string {
	var b strings.Builder
	b.WriteString("Source URL: " + url + "\n\n")
	b.WriteString("Extracted Emails: " + strings.Join(emails, ", ") + "\n\n")
	b.WriteString("Website Content:\n" + text)
	return b.String()
}

// nonContentTags are removed wholesale before text extraction; they carry
// markup, chrome and embeds rather than company content.
var nonContentTags = []string{"script", "style", "nav", "footer", "header", "noscript", "iframe", "svg"}

var (
	tagBlockRes = buildTagBlockRes()
	anyTagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe     = regexp.MustCompile(`[ \t]+`)
)

func buildTagBlockRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(nonContentTags))
	for _, tag := range nonContentTags {
		res = append(res, regexp.MustCompile(`(?is)<`+tag+`[^>]*>.*?</`+tag+`>`))
	}
	return res
}

// StripHTML removes non-content blocks, strips tags, decodes common
// entities, and collapses whitespace to single-spaced lines.
func StripHTML(html string) string {
	for _, re := range tagBlockRes {
		html = re.ReplaceAllString(html, " ")
	}

	html = anyTagRe.ReplaceAllString(html, "\n")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	// One space within lines, no blank lines between them.
	html = spaceRe.ReplaceAllString(html, " ")
	lines := strings.Split(html, "\n")
	var kept []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

// MergeEmails combines email lists preserving first-seen order.
func MergeEmails(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, e := range list {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			merged = append(merged, e)
		}
	}
	return merged
}
