package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var articleColumns = []string{
	"id", "title", "url", "source", "published_at", "summary", "content",
	"cve_numbers", "mitre_attack_ids", "categories", "content_fingerprint",
	"created_at", "last_sent_at",
}

// SQLArticleRepository handles database operations for articles
type SQLArticleRepository struct {
	db *DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// UpsertBatch stores articles, skipping any whose content fingerprint is
// already present. The whole batch is written in one transaction; if that
// fails, each article is retried individually so one bad row cannot take
// down the rest of the batch.
func (r *SQLArticleRepository) UpsertBatch(ctx context.Context, articles []Article) (UpsertStats, error) {
	var stats UpsertStats

	valid := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.URL == "" || a.Source == "" || a.PublishedAt.IsZero() || a.ContentFingerprint == "" {
			slog.Warn("Rejecting article with missing required fields", "title", a.Title, "url", a.URL)
			stats.Rejected++
			continue
		}
		valid = append(valid, a)
	}
	if len(valid) == 0 {
		return stats, nil
	}

	existing, err := r.existingFingerprints(ctx, valid)
	if err != nil {
		return stats, err
	}

	fresh := make([]Article, 0, len(valid))
	seen := make(map[string]bool, len(valid))
	for _, a := range valid {
		if existing[a.ContentFingerprint] || seen[a.ContentFingerprint] {
			stats.Skipped++
			continue
		}
		seen[a.ContentFingerprint] = true
		fresh = append(fresh, a)
	}
	if len(fresh) == 0 {
		return stats, nil
	}

	if err := r.insertTx(ctx, fresh); err == nil {
		stats.Inserted = len(fresh)
		return stats, nil
	}

	slog.Warn("Batch insert failed, retrying articles individually", "count", len(fresh))
	for _, a := range fresh {
		switch err := r.insertOne(ctx, r.db, a); {
		case err == nil:
			stats.Inserted++
		case isUniqueViolation(err):
			stats.Skipped++
		default:
			slog.Error("Failed to store article", "url", a.URL, "error", err)
			stats.Rejected++
		}
	}

	return stats, nil
}

func (r *SQLArticleRepository) existingFingerprints(ctx context.Context, articles []Article) (map[string]bool, error) {
	fingerprints := make([]string, 0, len(articles))
	for _, a := range articles {
		fingerprints = append(fingerprints, a.ContentFingerprint)
	}

	rows, err := sq.Select("content_fingerprint").
		From("articles").
		Where(sq.Eq{"content_fingerprint": fingerprints}).
		RunWith(r.db.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing fingerprints: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		existing[fp] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fingerprint rows: %w", err)
	}

	return existing, nil
}

func (r *SQLArticleRepository) insertTx(ctx context.Context, articles []Article) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range articles {
		if err := r.insertOne(ctx, tx, a); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLArticleRepository) insertOne(ctx context.Context, runner sq.BaseRunner, a Article) error {
	_, err := sq.Insert("articles").
		Columns("title", "url", "source", "published_at", "summary", "content",
			"cve_numbers", "mitre_attack_ids", "categories", "content_fingerprint", "created_at").
		Values(a.Title, a.URL, a.Source, a.PublishedAt.UTC(), a.Summary, a.Content,
			encodeList(a.CVEs), encodeList(a.MitreIDs), encodeList(a.Categories),
			a.ContentFingerprint, time.Now().UTC()).
		RunWith(runner).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

// GetRecent returns the newest articles published within the last days days
func (r *SQLArticleRepository) GetRecent(ctx context.Context, days, limit int) ([]Article, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	query := sq.Select(articleColumns...).
		From("articles").
		Where(sq.GtOrEq{"published_at": cutoff}).
		OrderBy("published_at DESC").
		Limit(uint64(limit))

	return r.queryArticles(ctx, query)
}

// GetUnsent returns articles that have not been delivered downstream yet
func (r *SQLArticleRepository) GetUnsent(ctx context.Context, limit int) ([]Article, error) {
	query := sq.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"last_sent_at": nil}).
		OrderBy("published_at DESC").
		Limit(uint64(limit))

	return r.queryArticles(ctx, query)
}

// MarkSent records delivery time for the given articles
func (r *SQLArticleRepository) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := sq.Update("articles").
		Set("last_sent_at", time.Now().UTC()).
		Where(sq.Eq{"id": ids}).
		RunWith(r.db.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark articles sent: %w", err)
	}
	return nil
}

// UpdateEnrichment replaces an article's body, summary and identifiers with
// values recovered from its full page
func (r *SQLArticleRepository) UpdateEnrichment(ctx context.Context, id int64, content, summary string, cves, mitreIDs []string) error {
	_, err := sq.Update("articles").
		Set("content", content).
		Set("summary", summary).
		Set("cve_numbers", encodeList(cves)).
		Set("mitre_attack_ids", encodeList(mitreIDs)).
		Where(sq.Eq{"id": id}).
		RunWith(r.db.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update enrichment: %w", err)
	}
	return nil
}

// CountBySource returns how many articles each source has contributed
func (r *SQLArticleRepository) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := sq.Select("source", "COUNT(*)").
		From("articles").
		GroupBy("source").
		RunWith(r.db.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source counts: %w", err)
	}

	return counts, nil
}

func (r *SQLArticleRepository) queryArticles(ctx context.Context, query sq.SelectBuilder) ([]Article, error) {
	rows, err := query.RunWith(r.db.DB).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		var cves, mitre, categories string
		var lastSent sql.NullTime
		err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Source, &a.PublishedAt,
			&a.Summary, &a.Content, &cves, &mitre, &categories,
			&a.ContentFingerprint, &a.CreatedAt, &lastSent)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		a.CVEs = decodeList(cves)
		a.MitreIDs = decodeList(mitre)
		a.Categories = decodeList(categories)
		if lastSent.Valid {
			t := lastSent.Time
			a.LastSentAt = &t
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(data string) []string {
	values := []string{}
	if data == "" {
		return values
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return []string{}
	}
	return values
}
