package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/threatwire/threatwire/app/database"
	"github.com/threatwire/threatwire/app/enrich"
	"github.com/threatwire/threatwire/app/extract"
	"github.com/threatwire/threatwire/app/feed"
	"github.com/threatwire/threatwire/app/normalize"
	"github.com/threatwire/threatwire/app/sources"
)

// Stage names the step a run is currently in.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageFetching      Stage = "fetching"
	StageDeduplicating Stage = "deduplicating"
	StageFiltering     Stage = "filtering"
	StageEnriching     Stage = "enriching"
	StagePersisting    Stage = "persisting"
	StageDone          Stage = "done"
)

// Stats counts what happened to candidates over one run. Fetched is the
// total number of feed entries seen, before any per-entry filtering.
type Stats struct {
	Fetched           int
	SourceErrors      int
	FilteredByKeyword int
	FilteredByAge     int
	InvalidEntries    int
	Malformed         int
	DedupedByURL      int
	DedupedByTitle    int
	Enriched          int
	EnrichErrors      int
	Persisted         int
	Skipped           int
	Rejected          int
}

type Fetcher interface {
	Fetch(ctx context.Context, src sources.Source) ([]feed.Candidate, feed.FetchStats, error)
}

type Enricher interface {
	Enrich(ctx context.Context, url string) (*enrich.Page, error)
}

// Options configures a pipeline run.
type Options struct {
	Sources        []sources.Source
	Workers        int
	MaxAgeDays     int
	SkipEnrichment bool
}

// Pipeline runs one ingestion pass: fetch all sources, deduplicate,
// filter by age, extract identifiers, enrich, persist.
type Pipeline struct {
	fetcher  Fetcher
	dedup    *feed.Deduplicator
	enricher Enricher
	repo     database.ArticleRepository
	opts     Options

	mu    sync.Mutex
	stage Stage

	now func() time.Time
}

func NewPipeline(fetcher Fetcher, dedup *feed.Deduplicator, enricher Enricher, repo database.ArticleRepository, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		fetcher:  fetcher,
		dedup:    dedup,
		enricher: enricher,
		repo:     repo,
		opts:     opts,
		stage:    StageIdle,
		now:      time.Now,
	}
}

// Stage reports which step the current run is in.
func (p *Pipeline) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

func (p *Pipeline) setStage(s Stage) {
	p.mu.Lock()
	p.stage = s
	p.mu.Unlock()
}

// Run executes one full ingestion pass. Individual source and enrichment
// failures are logged and counted but never abort the run; only a storage
// failure does.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	runID := uuid.NewString()
	started := p.now()
	stats := &Stats{}

	slog.Info("Run started", "run_id", runID, "sources", len(p.opts.Sources))

	p.setStage(StageFetching)
	candidates := p.fetchAll(ctx, stats)

	if err := ctx.Err(); err != nil {
		p.setStage(StageDone)
		return stats, err
	}

	p.setStage(StageDeduplicating)
	candidates, dedupStats := p.dedup.Run(candidates)
	stats.Malformed = dedupStats.Malformed
	stats.DedupedByURL = dedupStats.ByURL
	stats.DedupedByTitle = dedupStats.ByTitle

	p.setStage(StageFiltering)
	articles := p.buildArticles(candidates, started, stats)

	if !p.opts.SkipEnrichment {
		p.setStage(StageEnriching)
		p.enrichAll(ctx, articles, stats)
	}

	if err := ctx.Err(); err != nil {
		p.setStage(StageDone)
		return stats, err
	}

	p.setStage(StagePersisting)
	upsert, err := p.repo.UpsertBatch(ctx, articles)
	if err != nil {
		p.setStage(StageDone)
		return stats, err
	}
	stats.Persisted = upsert.Inserted
	stats.Skipped = upsert.Skipped
	stats.Rejected = upsert.Rejected

	p.setStage(StageDone)
	slog.Info("Run completed",
		"run_id", runID,
		"duration", p.now().Sub(started).Round(time.Millisecond),
		"fetched", stats.Fetched,
		"source_errors", stats.SourceErrors,
		"filtered_by_keyword", stats.FilteredByKeyword,
		"invalid_entries", stats.InvalidEntries,
		"malformed", stats.Malformed,
		"deduped_by_url", stats.DedupedByURL,
		"deduped_by_title", stats.DedupedByTitle,
		"filtered_by_age", stats.FilteredByAge,
		"enriched", stats.Enriched,
		"persisted", stats.Persisted,
		"skipped", stats.Skipped,
		"rejected", stats.Rejected)

	return stats, nil
}

// fetchAll fans out over the configured sources with a bounded number of
// workers. Results are collected per source index so the combined list keeps
// source registration order regardless of completion order.
func (p *Pipeline) fetchAll(ctx context.Context, stats *Stats) []feed.Candidate {
	results := make([][]feed.Candidate, len(p.opts.Sources))
	perSource := make([]feed.FetchStats, len(p.opts.Sources))
	errored := make([]bool, len(p.opts.Sources))

	sem := make(chan struct{}, p.opts.Workers)
	var wg sync.WaitGroup
	for i, src := range p.opts.Sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			candidates, fetchStats, err := p.fetcher.Fetch(ctx, src)
			if err != nil {
				slog.Error("Failed to fetch source", "source", src.Name, "error", err)
				errored[i] = true
				return
			}
			results[i] = candidates
			perSource[i] = fetchStats
		}(i, src)
	}
	wg.Wait()

	var combined []feed.Candidate
	for i := range results {
		if errored[i] {
			stats.SourceErrors++
			continue
		}
		stats.Fetched += perSource[i].Total
		stats.FilteredByKeyword += perSource[i].Keyword
		stats.FilteredByAge += perSource[i].Age
		stats.InvalidEntries += perSource[i].Invalid
		combined = append(combined, results[i]...)
	}

	return combined
}

// buildArticles applies the recency window a second time (deduplication can
// surface a survivor whose date differs from the one first checked during
// fetch) and converts candidates into storable articles with identifiers and
// categories extracted from the text available so far.
func (p *Pipeline) buildArticles(candidates []feed.Candidate, started time.Time, stats *Stats) []database.Article {
	articles := make([]database.Article, 0, len(candidates))
	for _, c := range candidates {
		if !feed.IsRecent(c, started, p.opts.MaxAgeDays) {
			stats.FilteredByAge++
			continue
		}

		text := c.Title
		if c.Summary != "" {
			text = c.Title + " " + c.Summary
		}

		summary := c.Summary
		if summary == "" {
			summary = c.Title
		}

		publishedAt := started
		if c.PublishedAt != nil {
			publishedAt = *c.PublishedAt
		}

		ids := extract.AllIDs(text)
		articles = append(articles, database.Article{
			Title:              c.Title,
			URL:                c.URL,
			Source:             c.Source,
			PublishedAt:        publishedAt,
			Summary:            summary,
			CVEs:               ids.CVEs,
			MitreIDs:           ids.Mitre,
			Categories:         extract.Categories(text),
			ContentFingerprint: normalize.Fingerprint(c.URL, c.Title),
		})
	}
	return articles
}

// enrichAll fetches each article's page for full text. Enrichment is
// best-effort: a failed page fetch keeps the feed-derived summary.
func (p *Pipeline) enrichAll(ctx context.Context, articles []database.Article, stats *Stats) {
	for i := range articles {
		if ctx.Err() != nil {
			return
		}
		page, err := p.enricher.Enrich(ctx, articles[i].URL)
		if err != nil {
			slog.Debug("Enrichment failed, keeping feed content", "url", articles[i].URL, "error", err)
			stats.EnrichErrors++
			continue
		}

		articles[i].Content = page.Content
		if page.Summary != "" {
			articles[i].Summary = page.Summary
		}

		merged := extract.Merge(extract.IDs{CVEs: articles[i].CVEs, Mitre: articles[i].MitreIDs}, page.IDs)
		articles[i].CVEs = merged.CVEs
		articles[i].MitreIDs = merged.Mitre
		articles[i].Categories = mergeCategories(articles[i].Categories, extract.Categories(page.Content))

		stats.Enriched++
	}
}

func mergeCategories(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	merged := make([]string, 0, len(a)+len(b))
	for _, lists := range [][]string{a, b} {
		for _, c := range lists {
			if !seen[c] {
				seen[c] = true
				merged = append(merged, c)
			}
		}
	}
	return merged
}
