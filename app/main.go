package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/threatwire/threatwire/app/cfg"
	"github.com/threatwire/threatwire/app/database"
	"github.com/threatwire/threatwire/app/enrich"
	"github.com/threatwire/threatwire/app/feed"
	"github.com/threatwire/threatwire/app/pipeline"
	"github.com/threatwire/threatwire/app/sources"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting ThreatWire", "version", c.Version)

	srcs, err := sources.Load(c.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources", "error", err)
		os.Exit(1)
	}
	slog.Info("Sources loaded", "count", len(srcs))

	db, err := database.NewDB(c.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", c.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", c.DBPath, "schema_version", version, "dirty", dirty)

	repo := database.NewArticleRepository(db)

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, c.UserAgent,
		time.Duration(c.FetchTimeout)*time.Second, c.MaxAgeDays, c.PerSourceLimit)
	dedup := feed.NewDeduplicator(c.SimilarityThreshold)
	enricher := enrich.NewEnricher(httpClient, c.UserAgent,
		time.Duration(c.EnrichTimeout)*time.Second, time.Duration(c.EnrichDelayMs)*time.Millisecond)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.NewPipeline(fetcher, dedup, enricher, repo, pipeline.Options{
		Sources:        srcs,
		Workers:        c.FetchWorkers,
		MaxAgeDays:     c.MaxAgeDays,
		SkipEnrichment: c.SkipEnrichment,
	})

	if _, err := p.Run(ctx); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}

	counts, err := repo.CountBySource(ctx)
	if err != nil {
		slog.Warn("Failed to read source totals", "error", err)
		return
	}
	for source, count := range counts {
		slog.Debug("Stored article total", "source", source, "count", count)
	}
}
