package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://r.jina.ai", cfg.Jina.BaseURL)
	assert.Equal(t, "https://s.jina.ai", cfg.Jina.SearchBaseURL)
	assert.Equal(t, 3, cfg.Scrape.MinPages)
	assert.Equal(t, 5, cfg.Scrape.MaxParallel)
	assert.Equal(t, 10, cfg.Search.MaxSources)
	assert.Equal(t, 20, cfg.Extraction.MaxKeywords)
	assert.Equal(t, 5, cfg.Extraction.MinUsefulKeywords)
	assert.Equal(t, 10, cfg.Extraction.Keywords.SmallMaxItems)
	assert.Equal(t, 30, cfg.Extraction.Keywords.MediumMaxItems)
	assert.Equal(t, 3, cfg.Extraction.Keywords.LargeCutoff)
	assert.Equal(t, 5, cfg.Analysis.Competitive.Intensity.LowMax)
	assert.Equal(t, 15, cfg.Analysis.Competitive.Intensity.MediumMax)
	assert.InDelta(t, 0.85, cfg.Analysis.Competitive.SimilarityThreshold, 0.001)
	assert.InDelta(t, 12, cfg.Analysis.Financial.HealthyRunwayMonths, 0.001)
	assert.InDelta(t, 0.3, cfg.Analysis.Market.SAMRatio, 0.001)
	assert.InDelta(t, 0.03, cfg.Analysis.Market.SOMRatio, 0.001)
	assert.InDelta(t, 0.4, cfg.Consolidation.Weights.Financial, 0.001)
	assert.InDelta(t, 0.3, cfg.Consolidation.Weights.Market, 0.001)
	assert.InDelta(t, 0.3, cfg.Consolidation.Weights.Competitive, 0.001)
	assert.Equal(t, []string{"markdown", "json"}, cfg.Report.Formats)
	assert.InDelta(t, 0.25, cfg.Monitoring.FailureRateThreshold, 0.001)
	assert.Equal(t, 24, cfg.Monitoring.LookbackWindowHours)
	assert.Empty(t, cfg.Monitoring.WebhookURL)
	assert.Equal(t, 30*time.Minute, cfg.Monitoring.StallAfter())
	assert.NoError(t, cfg.Validate())
}

func TestDefaultMatchesLoad(t *testing.T) {
	chdirTemp(t)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, loaded, Default())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/ideas
log:
  level: debug
  format: console
extraction:
  keywords:
    small_max_items: 5
analysis:
  competitive:
    intensity:
      low_max: 2
      medium_max: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Extraction.Keywords.SmallMaxItems)
	assert.Equal(t, 2, cfg.Analysis.Competitive.Intensity.LowMax)
	assert.Equal(t, 8, cfg.Analysis.Competitive.Intensity.MediumMax)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Extraction.Keywords.MediumMaxItems)
	assert.Equal(t, 3, cfg.Scrape.MinPages)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("IDEA_STORE_DRIVER", "sqlite")
	t.Setenv("IDEA_LOG_LEVEL", "warn")
	t.Setenv("IDEA_SCRAPE_MIN_PAGES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Scrape.MinPages)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"store driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"cache driver", func(c *Config) { c.Cache.Driver = "redis" }, "cache.driver"},
		{"cache disabled", func(c *Config) { c.Cache.Driver = "none" }, ""},
		{"negative ttl", func(c *Config) { c.Cache.TTLHours = -1 }, "ttl_hours"},
		{"min pages", func(c *Config) { c.Scrape.MinPages = 0 }, "min_pages"},
		{"max parallel", func(c *Config) { c.Scrape.MaxParallel = 0 }, "max_parallel"},
		{"rate", func(c *Config) { c.Scrape.RequestsPerSecond = 0 }, "requests_per_second"},
		{"max sources", func(c *Config) { c.Search.MaxSources = 0 }, "max_sources"},
		{"max keywords", func(c *Config) { c.Extraction.MaxKeywords = 0 }, "max_keywords"},
		{"keyword tiers", func(c *Config) { c.Extraction.Keywords.MediumMaxItems = 5 }, "extraction.keywords"},
		{"intensity", func(c *Config) { c.Analysis.Competitive.Intensity.LowMax = 20 }, "intensity"},
		{"similarity", func(c *Config) { c.Analysis.Competitive.SimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"sam ratio", func(c *Config) { c.Analysis.Market.SAMRatio = 2 }, "analysis.market"},
		{"runway order", func(c *Config) { c.Analysis.Financial.HealthyRunwayMonths = 24 }, "healthy_runway_months"},
		{"viability bands", func(c *Config) { c.Analysis.Financial.LowViability = 0.8 }, "low_viability"},
		{"weights sum", func(c *Config) { c.Consolidation.Weights.Financial = 0.5 }, "weights sum"},
		{"negative weight", func(c *Config) {
			c.Consolidation.Weights.Financial = -0.2
			c.Consolidation.Weights.Market = 0.9
		}, "non-negative"},
		{"rating bands", func(c *Config) { c.Consolidation.ModerateRating = 0.9 }, "moderate_rating"},
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"report format", func(c *Config) { c.Report.Formats = []string{"pdf"} }, "report format"},
		{"monitoring rate", func(c *Config) { c.Monitoring.FailureRateThreshold = 1.5 }, "monitoring rate"},
		{"stalled minutes", func(c *Config) { c.Monitoring.StalledRunMinutes = -1 }, "stalled_run_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWeightsAsMap(t *testing.T) {
	w := Default().Consolidation.Weights.AsMap()
	assert.Equal(t, map[string]float64{"financial": 0.4, "market": 0.3, "competitive": 0.3}, w)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
