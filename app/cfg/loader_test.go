package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:              "./test.db",
		SourcesFile:         "./sources.yml",
		MaxAgeDays:          3,
		SimilarityThreshold: 0.85,
		PerSourceLimit:      30,
		FetchWorkers:        4,
		FetchTimeout:        15,
		SkipEnrichment:      true,
		EnrichTimeout:       10,
		EnrichDelayMs:       200,
		UserAgent:           "Test Agent",
		Debug:               true,
		Version:             "test-version",
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected db path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.SourcesFile != "./sources.yml" {
		t.Errorf("Expected sources file './sources.yml', got '%s'", cfg.SourcesFile)
	}
	if cfg.MaxAgeDays != 3 {
		t.Errorf("Expected max age 3, got %d", cfg.MaxAgeDays)
	}
	if cfg.SimilarityThreshold != 0.85 {
		t.Errorf("Expected similarity threshold 0.85, got %f", cfg.SimilarityThreshold)
	}
	if cfg.PerSourceLimit != 30 {
		t.Errorf("Expected per-source limit 30, got %d", cfg.PerSourceLimit)
	}
	if cfg.FetchWorkers != 4 {
		t.Errorf("Expected 4 fetch workers, got %d", cfg.FetchWorkers)
	}
	if !cfg.SkipEnrichment {
		t.Error("Expected enrichment to be skipped")
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
