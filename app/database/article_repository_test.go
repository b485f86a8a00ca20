package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testRepo(t *testing.T) *SQLArticleRepository {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewArticleRepository(db)
}

func testArticle(url, fingerprint string) Article {
	return Article{
		Title:              "Ransomware hits hospital network",
		URL:                url,
		Source:             "The Hacker News",
		PublishedAt:        time.Now().UTC().AddDate(0, 0, -1),
		Summary:            "A ransomware group encrypted systems at a major hospital.",
		CVEs:               []string{"CVE-2024-12345"},
		Categories:         []string{"ransomware"},
		ContentFingerprint: fingerprint,
	}
}

func TestUpsertBatch_Idempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	batch := []Article{
		testArticle("https://example.com/a", "fp-a"),
		testArticle("https://example.com/b", "fp-b"),
	}

	stats, err := repo.UpsertBatch(ctx, batch)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Inserted != 2 || stats.Skipped != 0 {
		t.Errorf("Expected 2 inserted, 0 skipped, got %+v", stats)
	}

	stats, err = repo.UpsertBatch(ctx, batch)
	if err != nil {
		t.Fatalf("Expected no error on second pass, got: %v", err)
	}
	if stats.Inserted != 0 || stats.Skipped != 2 {
		t.Errorf("Expected repeat batch to be skipped entirely, got %+v", stats)
	}

	articles, err := repo.GetRecent(ctx, 7, 10)
	if err != nil {
		t.Fatalf("Failed to read articles back: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("Expected 2 stored articles, got %d", len(articles))
	}
}

func TestUpsertBatch_DuplicateWithinBatch(t *testing.T) {
	repo := testRepo(t)

	batch := []Article{
		testArticle("https://example.com/a", "fp-same"),
		testArticle("https://example.com/a?utm_source=feed", "fp-same"),
	}

	stats, err := repo.UpsertBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Inserted != 1 || stats.Skipped != 1 {
		t.Errorf("Expected 1 inserted, 1 skipped, got %+v", stats)
	}
}

func TestUpsertBatch_RejectsMissingFields(t *testing.T) {
	repo := testRepo(t)

	missingTitle := testArticle("https://example.com/a", "fp-a")
	missingTitle.Title = ""

	missingDate := testArticle("https://example.com/b", "fp-b")
	missingDate.PublishedAt = time.Time{}

	stats, err := repo.UpsertBatch(context.Background(), []Article{
		missingTitle,
		missingDate,
		testArticle("https://example.com/c", "fp-c"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Rejected != 2 {
		t.Errorf("Expected 2 rejected, got %+v", stats)
	}
	if stats.Inserted != 1 {
		t.Errorf("Expected 1 inserted, got %+v", stats)
	}
}

func TestUpsertBatch_RoundTripsIdentifierLists(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	article := testArticle("https://example.com/a", "fp-a")
	article.MitreIDs = []string{"T1055", "T1566.001"}

	if _, err := repo.UpsertBatch(ctx, []Article{article}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	stored, err := repo.GetRecent(ctx, 7, 1)
	if err != nil {
		t.Fatalf("Failed to read article back: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(stored))
	}

	got := stored[0]
	if len(got.CVEs) != 1 || got.CVEs[0] != "CVE-2024-12345" {
		t.Errorf("Expected CVE list to round trip, got %v", got.CVEs)
	}
	if len(got.MitreIDs) != 2 || got.MitreIDs[1] != "T1566.001" {
		t.Errorf("Expected MITRE list to round trip, got %v", got.MitreIDs)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "ransomware" {
		t.Errorf("Expected category list to round trip, got %v", got.Categories)
	}
	if got.LastSentAt != nil {
		t.Errorf("Expected new article to be unsent, got %v", got.LastSentAt)
	}
}

func TestGetRecent_OrdersByPublicationDate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	older := testArticle("https://example.com/old", "fp-old")
	older.PublishedAt = time.Now().UTC().AddDate(0, 0, -3)
	newer := testArticle("https://example.com/new", "fp-new")
	newer.PublishedAt = time.Now().UTC().AddDate(0, 0, -1)

	if _, err := repo.UpsertBatch(ctx, []Article{older, newer}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	articles, err := repo.GetRecent(ctx, 7, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}
	if articles[0].URL != "https://example.com/new" {
		t.Errorf("Expected newest article first, got %s", articles[0].URL)
	}
}

func TestMarkSent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.UpsertBatch(ctx, []Article{
		testArticle("https://example.com/a", "fp-a"),
		testArticle("https://example.com/b", "fp-b"),
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	unsent, err := repo.GetUnsent(ctx, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(unsent) != 2 {
		t.Fatalf("Expected 2 unsent articles, got %d", len(unsent))
	}

	if err := repo.MarkSent(ctx, []int64{unsent[0].ID}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	unsent, err = repo.GetUnsent(ctx, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(unsent) != 1 {
		t.Errorf("Expected 1 unsent article after marking, got %d", len(unsent))
	}
}

func TestUpdateEnrichment(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.UpsertBatch(ctx, []Article{testArticle("https://example.com/a", "fp-a")}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	stored, err := repo.GetRecent(ctx, 7, 1)
	if err != nil || len(stored) != 1 {
		t.Fatalf("Failed to read article back: %v", err)
	}

	err = repo.UpdateEnrichment(ctx, stored[0].ID,
		"Full extracted body mentioning CVE-2024-9999.",
		"Short enriched summary.",
		[]string{"CVE-2024-12345", "CVE-2024-9999"},
		[]string{"T1055"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	updated, err := repo.GetRecent(ctx, 7, 1)
	if err != nil || len(updated) != 1 {
		t.Fatalf("Failed to read article back: %v", err)
	}
	if updated[0].Summary != "Short enriched summary." {
		t.Errorf("Expected enriched summary, got %q", updated[0].Summary)
	}
	if len(updated[0].CVEs) != 2 {
		t.Errorf("Expected 2 CVEs after enrichment, got %v", updated[0].CVEs)
	}
}

func TestCountBySource(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	a := testArticle("https://example.com/a", "fp-a")
	b := testArticle("https://example.com/b", "fp-b")
	c := testArticle("https://example.com/c", "fp-c")
	c.Source = "BleepingComputer"

	if _, err := repo.UpsertBatch(ctx, []Article{a, b, c}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	counts, err := repo.CountBySource(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if counts["The Hacker News"] != 2 {
		t.Errorf("Expected 2 articles for The Hacker News, got %d", counts["The Hacker News"])
	}
	if counts["BleepingComputer"] != 1 {
		t.Errorf("Expected 1 article for BleepingComputer, got %d", counts["BleepingComputer"])
	}
}
