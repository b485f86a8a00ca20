package feed

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/threatwire/threatwire/app/normalize"
)

const (
	// Malformed-title heuristics: titles carrying article body text.
	maxRawTitleLength = 300
	maxTitleNewlines  = 2
	maxDoubleSpaces   = 5
)

// DedupStats counts how many candidates each pass removed.
type DedupStats struct {
	Malformed int
	ByURL     int
	ByTitle   int
}

// Deduplicator collapses the cross-source candidate batch in three ordered
// passes: malformed-title purge, exact URL collapse, fuzzy title collapse.
// The passes are order-sensitive and must not be reordered; the fuzzy pass
// keeps the first-seen candidate, so the input has to arrive in canonical
// (source-registration, then feed) order.
type Deduplicator struct {
	threshold float64
	metric    *metrics.Levenshtein
}

func NewDeduplicator(threshold float64) *Deduplicator {
	return &Deduplicator{
		threshold: threshold,
		metric:    metrics.NewLevenshtein(),
	}
}

func (d *Deduplicator) Run(candidates []Candidate) ([]Candidate, DedupStats) {
	var stats DedupStats

	cleaned := d.purgeMalformed(candidates, &stats)
	byURL := d.collapseByURL(cleaned, &stats)
	final := d.collapseByTitle(byURL, &stats)

	// Titles are re-normalized once before emission so downstream stages
	// and storage see the canonical form.
	for i := range final {
		final[i].Title = normalize.Title(final[i].Title, normalize.DefaultTitleLength)
	}

	return final, stats
}

// purgeMalformed drops candidates whose raw title looks like it contains
// article body text rather than a headline.
func (d *Deduplicator) purgeMalformed(candidates []Candidate, stats *DedupStats) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Title) > maxRawTitleLength ||
			strings.Count(c.Title, "\n") > maxTitleNewlines ||
			strings.Count(c.Title, "  ") > maxDoubleSpaces {
			stats.Malformed++
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// collapseByURL groups candidates by normalized URL and keeps one per
// group: the one with the shortest normalized title, ties going to the
// first seen. The winner stays at the first-seen position so the ordering
// guarantee for the fuzzy pass holds.
func (d *Deduplicator) collapseByURL(candidates []Candidate, stats *DedupStats) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	position := make(map[string]int, len(candidates))

	for _, c := range candidates {
		if c.URL == "" {
			stats.ByURL++
			continue
		}

		key := normalize.URL(c.URL)

		pos, dup := position[key]
		if !dup {
			position[key] = len(kept)
			kept = append(kept, c)
			continue
		}

		stats.ByURL++

		existing := normalize.Title(kept[pos].Title, normalize.DefaultTitleLength)
		current := normalize.Title(c.Title, normalize.DefaultTitleLength)
		if len(current) < len(existing) {
			kept[pos] = c
		}
	}

	return kept
}

// collapseByTitle removes near-duplicate stories picked up from different
// sources. O(n²) in the batch size, which stays in the low hundreds per run.
func (d *Deduplicator) collapseByTitle(candidates []Candidate, stats *DedupStats) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	seenTitles := make([]string, 0, len(candidates))

	for _, c := range candidates {
		title := strings.ToLower(normalize.Title(c.Title, normalize.DefaultTitleLength))
		if title == "" {
			stats.ByTitle++
			continue
		}

		duplicate := false
		for _, seen := range seenTitles {
			if strutil.Similarity(title, seen, d.metric) >= d.threshold {
				duplicate = true
				break
			}
		}

		if duplicate {
			stats.ByTitle++
			continue
		}

		kept = append(kept, c)
		seenTitles = append(seenTitles, title)
	}

	return kept
}
