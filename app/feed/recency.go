package feed

import (
	"time"
)

// IsRecent reports whether a candidate falls inside the age window. Future
// dates are always accepted (clock skew between feed publishers is common).
// A candidate with no date at all is accepted once; the persisted
// fingerprint constraint keeps it from ever being reprocessed. Unparseable
// dates never reach this point: the fetcher skips those items outright.
func IsRecent(c Candidate, today time.Time, maxAgeDays int) bool {
	if c.PublishedAt == nil {
		return true
	}

	age := AgeInDays(*c.PublishedAt, today)
	if age < 0 {
		return true
	}

	return age <= maxAgeDays
}

// AgeInDays returns the whole-day distance from published to today,
// comparing calendar dates rather than instants. Negative means the
// published date lies in the future.
func AgeInDays(published, today time.Time) int {
	p := dateOnly(published)
	t := dateOnly(today)
	return int(t.Sub(p).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
