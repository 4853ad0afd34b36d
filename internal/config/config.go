package config

import (
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/idea-research/internal/db"
	"github.com/sells-group/idea-research/internal/threshold"
)

// Config holds the full application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Jina          JinaConfig          `yaml:"jina" mapstructure:"jina"`
	Scrape        ScrapeConfig        `yaml:"scrape" mapstructure:"scrape"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	Extraction    ExtractionConfig    `yaml:"extraction" mapstructure:"extraction"`
	Analysis      AnalysisConfig      `yaml:"analysis" mapstructure:"analysis"`
	Consolidation ConsolidationConfig `yaml:"consolidation" mapstructure:"consolidation"`
	Report        ReportConfig        `yaml:"report" mapstructure:"report"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Monitoring    MonitoringConfig    `yaml:"monitoring" mapstructure:"monitoring"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	Driver      string        `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	Pool        db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// CacheConfig configures the content cache. Driver "none" disables it.
type CacheConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the entry lifetime. Zero means entries never expire.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// JinaConfig holds Jina AI Reader and Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ScrapeConfig configures source fetching.
type ScrapeConfig struct {
	MinPages          int      `yaml:"min_pages" mapstructure:"min_pages"`
	MaxParallel       int      `yaml:"max_parallel" mapstructure:"max_parallel"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Retries           int      `yaml:"retries" mapstructure:"retries"`
	TimeoutSecs       int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent         string   `yaml:"user_agent" mapstructure:"user_agent"`
	ExcludePaths      []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// SearchConfig configures source discovery.
type SearchConfig struct {
	MaxSources  int `yaml:"max_sources" mapstructure:"max_sources"`
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries     int `yaml:"retries" mapstructure:"retries"`
}

// ExtractionConfig configures keyword and entity extraction.
type ExtractionConfig struct {
	MaxKeywords       int                    `yaml:"max_keywords" mapstructure:"max_keywords"`
	MinUsefulKeywords int                    `yaml:"min_useful_keywords" mapstructure:"min_useful_keywords"`
	MaxOrganizations  int                    `yaml:"max_organizations" mapstructure:"max_organizations"`
	Keywords          threshold.KeywordTable `yaml:"keywords" mapstructure:"keywords"`
}

// AnalysisConfig groups the per-domain analysis settings.
type AnalysisConfig struct {
	Financial   FinancialConfig   `yaml:"financial" mapstructure:"financial"`
	Competitive CompetitiveConfig `yaml:"competitive" mapstructure:"competitive"`
	Market      MarketConfig      `yaml:"market" mapstructure:"market"`
}

// FinancialConfig holds the financial viability thresholds. Rates and
// margins are percentages.
type FinancialConfig struct {
	HealthyRunwayMonths float64 `yaml:"healthy_runway_months" mapstructure:"healthy_runway_months"`
	StrongRunwayMonths  float64 `yaml:"strong_runway_months" mapstructure:"strong_runway_months"`
	StrongGrowthRate    float64 `yaml:"strong_growth_rate" mapstructure:"strong_growth_rate"`
	WeakGrowthRate      float64 `yaml:"weak_growth_rate" mapstructure:"weak_growth_rate"`
	StrongProfitMargin  float64 `yaml:"strong_profit_margin" mapstructure:"strong_profit_margin"`
	LowViability        float64 `yaml:"low_viability" mapstructure:"low_viability"`
	HighViability       float64 `yaml:"high_viability" mapstructure:"high_viability"`
}

// CompetitiveConfig holds competitor clustering and intensity settings.
type CompetitiveConfig struct {
	Intensity           threshold.IntensityTable `yaml:"intensity" mapstructure:"intensity"`
	SimilarityThreshold float64                  `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	GapShare            float64                  `yaml:"gap_share" mapstructure:"gap_share"`
	MaxGaps             int                      `yaml:"max_gaps" mapstructure:"max_gaps"`
	MaxTopCompetitors   int                      `yaml:"max_top_competitors" mapstructure:"max_top_competitors"`
}

// MarketConfig holds the addressable-market ratios.
type MarketConfig struct {
	SAMRatio float64 `yaml:"sam_ratio" mapstructure:"sam_ratio"`
	SOMRatio float64 `yaml:"som_ratio" mapstructure:"som_ratio"`
}

// ConsolidationConfig holds score weights and rating bands.
type ConsolidationConfig struct {
	Weights        WeightsConfig `yaml:"weights" mapstructure:"weights"`
	StrongRating   float64       `yaml:"strong_rating" mapstructure:"strong_rating"`
	ModerateRating float64       `yaml:"moderate_rating" mapstructure:"moderate_rating"`
}

// WeightsConfig weights each analysis in the overall score.
type WeightsConfig struct {
	Financial   float64 `yaml:"financial" mapstructure:"financial"`
	Market      float64 `yaml:"market" mapstructure:"market"`
	Competitive float64 `yaml:"competitive" mapstructure:"competitive"`
}

// AsMap returns the weights keyed by analysis name.
func (w WeightsConfig) AsMap() map[string]float64 {
	return map[string]float64{
		"financial":   w.Financial,
		"market":      w.Market,
		"competitive": w.Competitive,
	}
}

// ReportConfig configures report rendering.
type ReportConfig struct {
	OutputDir string   `yaml:"output_dir" mapstructure:"output_dir"`
	Formats   []string `yaml:"formats" mapstructure:"formats"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MonitoringConfig configures run health alerts. Alerts are only sent
// when WebhookURL is set.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	PartialRateThreshold float64 `yaml:"partial_rate_threshold" mapstructure:"partial_rate_threshold"`
	MinFinishedRuns      int     `yaml:"min_finished_runs" mapstructure:"min_finished_runs"`
	LookbackWindowHours  int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	StalledRunMinutes    int     `yaml:"stalled_run_minutes" mapstructure:"stalled_run_minutes"`
}

// StallAfter is how long an unfinished run may go without a state update
// before it counts as stalled. Zero disables stall detection.
func (m MonitoringConfig) StallAfter() time.Duration {
	return time.Duration(m.StalledRunMinutes) * time.Minute
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "idea-research.db")
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.dsn", "idea-cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("scrape.min_pages", 3)
	v.SetDefault("scrape.max_parallel", 5)
	v.SetDefault("scrape.requests_per_second", 2.0)
	v.SetDefault("scrape.retries", 2)
	v.SetDefault("scrape.timeout_secs", 20)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; idea-research/1.0)")
	v.SetDefault("scrape.exclude_paths", []string{"/login*", "/signup*", "/cart*"})
	v.SetDefault("search.max_sources", 10)
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("search.retries", 1)
	v.SetDefault("extraction.max_keywords", 20)
	v.SetDefault("extraction.min_useful_keywords", 5)
	v.SetDefault("extraction.max_organizations", 20)
	kw := threshold.DefaultKeywordTable()
	v.SetDefault("extraction.keywords.small_max_items", kw.SmallMaxItems)
	v.SetDefault("extraction.keywords.medium_max_items", kw.MediumMaxItems)
	v.SetDefault("extraction.keywords.small_cutoff", kw.SmallCutoff)
	v.SetDefault("extraction.keywords.medium_cutoff", kw.MediumCutoff)
	v.SetDefault("extraction.keywords.large_cutoff", kw.LargeCutoff)
	v.SetDefault("analysis.financial.healthy_runway_months", 12.0)
	v.SetDefault("analysis.financial.strong_runway_months", 18.0)
	v.SetDefault("analysis.financial.strong_growth_rate", 10.0)
	v.SetDefault("analysis.financial.weak_growth_rate", 5.0)
	v.SetDefault("analysis.financial.strong_profit_margin", 15.0)
	v.SetDefault("analysis.financial.low_viability", 0.5)
	v.SetDefault("analysis.financial.high_viability", 0.7)
	it := threshold.DefaultIntensityTable()
	v.SetDefault("analysis.competitive.intensity.low_max", it.LowMax)
	v.SetDefault("analysis.competitive.intensity.medium_max", it.MediumMax)
	v.SetDefault("analysis.competitive.similarity_threshold", 0.85)
	v.SetDefault("analysis.competitive.gap_share", 0.3)
	v.SetDefault("analysis.competitive.max_gaps", 5)
	v.SetDefault("analysis.competitive.max_top_competitors", 5)
	v.SetDefault("analysis.market.sam_ratio", 0.3)
	v.SetDefault("analysis.market.som_ratio", 0.03)
	v.SetDefault("consolidation.weights.financial", 0.4)
	v.SetDefault("consolidation.weights.market", 0.3)
	v.SetDefault("consolidation.weights.competitive", 0.3)
	v.SetDefault("consolidation.strong_rating", 0.7)
	v.SetDefault("consolidation.moderate_rating", 0.5)
	v.SetDefault("report.output_dir", "reports")
	v.SetDefault("report.formats", []string{"markdown", "json"})
	v.SetDefault("server.port", 8080)
	v.SetDefault("monitoring.failure_rate_threshold", 0.25)
	v.SetDefault("monitoring.partial_rate_threshold", 0.5)
	v.SetDefault("monitoring.min_finished_runs", 5)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.stalled_run_minutes", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Default returns the configuration with every default applied and no file
// or environment overrides.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling defaults only fails on a programming error in setDefaults.
	if err := v.Unmarshal(&cfg); err != nil {
		panic(eris.Wrap(err, "config: unmarshal defaults"))
	}
	return &cfg
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IDEA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var (
	storeDrivers  = map[string]bool{"sqlite": true, "postgres": true}
	cacheDrivers  = map[string]bool{"none": true, "memory": true, "sqlite": true, "postgres": true}
	reportFormats = map[string]bool{"markdown": true, "json": true, "xlsx": true}
)

// Validate checks the configuration once at startup.
func (c *Config) Validate() error {
	if !storeDrivers[c.Store.Driver] {
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if !cacheDrivers[c.Cache.Driver] {
		return eris.Errorf("config: unknown cache.driver %q", c.Cache.Driver)
	}
	if c.Cache.TTLHours < 0 {
		return eris.New("config: cache.ttl_hours must be non-negative")
	}
	if c.Scrape.MinPages < 1 {
		return eris.New("config: scrape.min_pages must be at least 1")
	}
	if c.Scrape.MaxParallel < 1 {
		return eris.New("config: scrape.max_parallel must be at least 1")
	}
	if c.Scrape.RequestsPerSecond <= 0 {
		return eris.New("config: scrape.requests_per_second must be positive")
	}
	if c.Search.MaxSources < 1 {
		return eris.New("config: search.max_sources must be at least 1")
	}
	if c.Extraction.MaxKeywords < 1 {
		return eris.New("config: extraction.max_keywords must be at least 1")
	}
	if c.Extraction.MinUsefulKeywords < 0 {
		return eris.New("config: extraction.min_useful_keywords must be non-negative")
	}
	if err := c.Extraction.Keywords.Validate(); err != nil {
		return eris.Wrap(err, "config: extraction.keywords")
	}
	if err := c.Analysis.Competitive.Intensity.Validate(); err != nil {
		return eris.Wrap(err, "config: analysis.competitive.intensity")
	}
	if s := c.Analysis.Competitive.SimilarityThreshold; s <= 0 || s > 1 {
		return eris.Errorf("config: analysis.competitive.similarity_threshold %.2f outside (0, 1]", s)
	}
	if r := c.Analysis.Market; r.SAMRatio < 0 || r.SAMRatio > 1 || r.SOMRatio < 0 || r.SOMRatio > 1 {
		return eris.New("config: analysis.market ratios must be within [0, 1]")
	}
	if f := c.Analysis.Financial; f.HealthyRunwayMonths > f.StrongRunwayMonths {
		return eris.New("config: analysis.financial.healthy_runway_months must not exceed strong_runway_months")
	}
	if f := c.Analysis.Financial; f.LowViability > f.HighViability {
		return eris.New("config: analysis.financial.low_viability must not exceed high_viability")
	}
	if err := c.Consolidation.validate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port must be > 0 and <= 65535, got %d", c.Server.Port)
	}
	if m := c.Monitoring; m.FailureRateThreshold < 0 || m.FailureRateThreshold > 1 ||
		m.PartialRateThreshold < 0 || m.PartialRateThreshold > 1 {
		return eris.New("config: monitoring rate thresholds must be within [0, 1]")
	}
	if c.Monitoring.StalledRunMinutes < 0 {
		return eris.New("config: monitoring.stalled_run_minutes must be non-negative")
	}
	for _, f := range c.Report.Formats {
		if !reportFormats[f] {
			return eris.Errorf("config: unknown report format %q", f)
		}
	}
	return nil
}

func (c ConsolidationConfig) validate() error {
	w := c.Weights
	if w.Financial < 0 || w.Market < 0 || w.Competitive < 0 {
		return eris.New("config: consolidation weights must be non-negative")
	}
	if sum := w.Financial + w.Market + w.Competitive; math.Abs(sum-1) > 1e-6 {
		return eris.Errorf("config: consolidation weights sum to %.3f, want 1", sum)
	}
	if c.ModerateRating > c.StrongRating {
		return eris.New("config: consolidation.moderate_rating must not exceed strong_rating")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
