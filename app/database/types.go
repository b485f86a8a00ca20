package database

import (
	"time"
)

// Article is a persisted security news article. Identifier and category
// slices are stored as JSON text columns.
type Article struct {
	ID                 int64
	Title              string
	URL                string
	Source             string
	PublishedAt        time.Time
	Summary            string
	Content            string
	CVEs               []string
	MitreIDs           []string
	Categories         []string
	ContentFingerprint string
	CreatedAt          time.Time
	LastSentAt         *time.Time
}

// UpsertStats reports what a batch write actually did.
type UpsertStats struct {
	Inserted int
	Skipped  int // fingerprint already present
	Rejected int // missing required fields
}
