package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/threatwire/threatwire/app/normalize"
	"github.com/threatwire/threatwire/app/sources"
)

const (
	// minTitleLength filters out stub entries ("Update", "Read more").
	minTitleLength = 10

	// minDescriptionLength is the point below which a feed description is
	// too thin to be worth summarizing.
	minDescriptionLength = 50
)

// cyberKeywords gates items from non-vendor sources: a title has to mention
// at least one of these to be considered security news.
var cyberKeywords = []string{
	"cybersecurity", "cyber security", "vulnerability", "vulnerabilities", "exploit", "exploitation",
	"ransomware", "malware", "phishing", "hack", "hacker", "breach", "data breach",
	"zero-day", "zeroday", "cve-", "cve ", "security flaw", "security patch",
	"cyber attack", "cyberattack", "threat", "threat actor", "apt", "backdoor",
	"trojan", "virus", "worm", "spyware", "ddos", "sql injection", "xss",
	"authentication bypass", "privilege escalation", "remote code execution",
	"information disclosure", "security update", "security advisory",
}

// FetchStats counts what happened to each entry of one source's feed
// document, so skips stay observable after the candidates are merged.
type FetchStats struct {
	Total   int // entries in the feed document
	Kept    int
	Keyword int // non-vendor entries with no cybersecurity keyword
	Age     int // outside the coarse age window
	Invalid int // missing title, link or usable date
}

type skipReason int

const (
	skipNone skipReason = iota
	skipInvalid
	skipKeyword
)

// Fetcher retrieves one source's feed document and turns it into candidate
// items. Malformed entries are skipped item by item; a wholesale failure
// (network, unparseable XML) is returned to the caller, which treats it as
// zero items from that source.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	timeout        time.Duration
	maxAgeDays     int
	perSourceLimit int
	now            func() time.Time
}

func NewFetcher(client *http.Client, userAgent string, timeout time.Duration, maxAgeDays, perSourceLimit int) *Fetcher {
	return &Fetcher{
		client:         client,
		userAgent:      userAgent,
		timeout:        timeout,
		maxAgeDays:     maxAgeDays,
		perSourceLimit: perSourceLimit,
		now:            time.Now,
	}
}

// Fetch retrieves and parses a single source's feed. Both RSS 2.0 and Atom
// element shapes are handled by the underlying parser.
func (f *Fetcher) Fetch(ctx context.Context, src sources.Source) ([]Candidate, FetchStats, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", src.URL, nil)
	if err != nil {
		return nil, FetchStats{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, FetchStats{}, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, FetchStats{}, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, FetchStats{}, fmt.Errorf("failed to parse feed: %w", err)
	}

	today := f.now()
	cutoffAge := f.maxAgeDays
	stats := FetchStats{Total: len(parsed.Items)}

	candidates := make([]Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		candidate, skip := f.buildCandidate(src, item)
		switch skip {
		case skipKeyword:
			stats.Keyword++
			continue
		case skipInvalid:
			stats.Invalid++
			continue
		}

		// Coarse age window; the recency filter runs again after the
		// cross-source merge.
		if age := AgeInDays(*candidate.PublishedAt, today); age > cutoffAge {
			stats.Age++
			continue
		}

		candidates = append(candidates, candidate)

		if len(candidates) >= f.perSourceLimit {
			break
		}
	}
	stats.Kept = len(candidates)

	slog.Debug("Fetched source", "source", src.Name, "total", stats.Total, "kept", stats.Kept,
		"keyword", stats.Keyword, "age", stats.Age, "invalid", stats.Invalid)

	return candidates, stats, nil
}

// buildCandidate validates a single feed entry, reporting why an entry was
// skipped so the caller can count it.
func (f *Fetcher) buildCandidate(src sources.Source, item *gofeed.Item) (Candidate, skipReason) {
	title := strings.TrimSpace(item.Title)
	if len(title) < minTitleLength {
		return Candidate{}, skipInvalid
	}

	if !src.Vendor() && !isCybersecurityRelated(title) {
		return Candidate{}, skipKeyword
	}

	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}
	if link == "" {
		return Candidate{}, skipInvalid
	}

	published := resolveDate(item)
	if published == nil {
		return Candidate{}, skipInvalid
	}

	return Candidate{
		Title:       title,
		URL:         link,
		Source:      src.Name,
		PublishedAt: published,
		Summary:     summarizeDescription(item),
	}, skipNone
}

// resolveDate picks the entry's publication date: the parser's own result
// first, then the updated timestamp, then a lenient re-parse of the raw
// date string. nil means the entry carries no usable date and is skipped.
func resolveDate(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}

	for _, raw := range []string{item.Published, item.Updated} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if parsed, err := dateparse.ParseAny(raw); err == nil {
			return &parsed
		}
	}

	return nil
}

// summarizeDescription turns the feed description into a provisional
// summary: HTML stripped, first three sentences, capped at 500 characters.
// Too-short descriptions yield no summary; enrichment fills the gap later.
func summarizeDescription(item *gofeed.Item) string {
	description := item.Description
	if description == "" {
		description = item.Content
	}

	text := stripHTML(description)
	if len(text) <= minDescriptionLength {
		return ""
	}

	return normalize.Summary(text, normalize.DefaultSummarySentences, normalize.DefaultSummaryLength)
}

func stripHTML(s string) string {
	if s == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func isCybersecurityRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range cyberKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
