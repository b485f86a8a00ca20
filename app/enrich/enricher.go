package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/threatwire/threatwire/app/extract"
	"github.com/threatwire/threatwire/app/normalize"
)

// maxContentLength caps stored article bodies.
const maxContentLength = 5000

// Page is what enrichment recovers from an article's full page: the
// readable body text, a summary derived from it, and any security
// identifiers found in the full text.
type Page struct {
	Content string
	Summary string
	IDs     extract.IDs
}

// Enricher fetches article pages and extracts their readable content.
// Fetches are rate limited: enrichment touches origin sites directly, so a
// minimal delay between successive page fetches is a politeness requirement,
// not a performance one.
type Enricher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	timeout   time.Duration
}

func NewEnricher(client *http.Client, userAgent string, timeout, delay time.Duration) *Enricher {
	return &Enricher{
		client:    client,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Enrich fetches the article page at url and extracts body, summary and
// identifiers. Callers treat any error as "keep the feed-derived fallback";
// enrichment is best-effort and never aborts a run.
func (e *Enricher) Enrich(ctx context.Context, url string) (*Page, error) {
	if url == "" {
		return nil, fmt.Errorf("article has no URL")
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	data, err := e.fetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article page: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("no content extracted from article page")
	}

	if runes := []rune(text); len(runes) > maxContentLength {
		text = string(runes[:maxContentLength])
	}

	page := &Page{
		Content: text,
		Summary: normalize.Summary(text, normalize.DefaultSummarySentences, normalize.DefaultSummaryLength),
		IDs:     extract.AllIDs(text),
	}

	slog.Debug("Article enriched", "url", url, "content_length", len(page.Content),
		"cves", len(page.IDs.CVEs), "mitre", len(page.IDs.Mitre))

	return page, nil
}

func (e *Enricher) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
