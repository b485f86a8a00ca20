package database

import (
	"context"
)

type ArticleRepository interface {
	UpsertBatch(ctx context.Context, articles []Article) (UpsertStats, error)

	GetRecent(ctx context.Context, days, limit int) ([]Article, error)
	GetUnsent(ctx context.Context, limit int) ([]Article, error)
	MarkSent(ctx context.Context, ids []int64) error

	UpdateEnrichment(ctx context.Context, id int64, content, summary string, cves, mitreIDs []string) error

	CountBySource(ctx context.Context) (map[string]int, error)
}
