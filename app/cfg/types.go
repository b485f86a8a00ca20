package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Pipeline configuration
	SourcesFile         string
	MaxAgeDays          int
	SimilarityThreshold float64
	PerSourceLimit      int
	FetchWorkers        int
	FetchTimeout        int // seconds
	SkipEnrichment      bool
	EnrichTimeout       int // seconds
	EnrichDelayMs       int // milliseconds between article page fetches

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
