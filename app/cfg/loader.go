package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./threatwire.db" description:"Path to the SQLite database file"`

	// Pipeline configuration
	SourcesFile         string  `long:"sources" env:"SOURCES_FILE" description:"Optional YAML file overriding the builtin source registry"`
	MaxAgeDays          int     `long:"max-age-days" env:"MAX_AGE_DAYS" default:"3" description:"Maximum article age in days"`
	SimilarityThreshold float64 `long:"similarity-threshold" env:"SIMILARITY_THRESHOLD" default:"0.85" description:"Title similarity ratio above which items are duplicates"`
	PerSourceLimit      int     `long:"per-source-limit" env:"PER_SOURCE_LIMIT" default:"30" description:"Maximum items kept per source per run"`
	FetchWorkers        int     `long:"fetch-workers" env:"FETCH_WORKERS" default:"4" description:"Number of concurrent feed fetches"`
	FetchTimeout        int     `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Feed fetch timeout in seconds"`
	SkipEnrichment      bool    `long:"skip-enrichment" env:"SKIP_ENRICHMENT" description:"Disable article page enrichment"`
	EnrichTimeout       int     `long:"enrich-timeout" env:"ENRICH_TIMEOUT" default:"10" description:"Article page fetch timeout in seconds"`
	EnrichDelayMs       int     `long:"enrich-delay-ms" env:"ENRICH_DELAY_MS" default:"200" description:"Minimum delay between article page fetches in milliseconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		SourcesFile:         raw.SourcesFile,
		MaxAgeDays:          raw.MaxAgeDays,
		SimilarityThreshold: raw.SimilarityThreshold,
		PerSourceLimit:      raw.PerSourceLimit,
		FetchWorkers:        raw.FetchWorkers,
		FetchTimeout:        raw.FetchTimeout,
		SkipEnrichment:      raw.SkipEnrichment,
		EnrichTimeout:       raw.EnrichTimeout,
		EnrichDelayMs:       raw.EnrichDelayMs,
		UserAgent:           raw.UserAgent,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
