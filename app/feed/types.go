package feed

import (
	"time"
)

// Candidate is an unvalidated, in-flight item produced by the Fetcher. It
// lives only for the duration of one pipeline run: candidates that survive
// filtering and deduplication become persisted articles, the rest are
// discarded.
type Candidate struct {
	Title  string
	URL    string
	Source string

	// PublishedAt is nil only for items from sources that carry no date
	// field at all. Feed items with an unparseable date are skipped at
	// fetch time instead.
	PublishedAt *time.Time

	// Summary is a provisional summary derived from the feed description,
	// possibly empty. Enrichment may replace it.
	Summary string
}
