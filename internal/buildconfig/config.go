// Package buildconfig loads the builder and search CLIs' configuration:
// a YAML file with environment variable overrides, in the style of the
// teacher's internal/patterns YAML loader and internal/storage/sessions'
// OCC_*-prefixed env var defaults.
package buildconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultDatasetDir      = "./data/corpus"
	DefaultPartialIndexDir = "./data/partial_index"
	DefaultFinalIndexDir   = "./data/final_index"
	DefaultDocMapPath      = "./data/final_index/doc_mapping.json"
	DefaultAnalyticsPath   = "./data/index_analytics.txt"
	DefaultBatchSize       = 5000
	DefaultHammingK        = 3

	backendNone       = "none"
	backendClickHouse = "clickhouse"
	backendSQLite     = "sqlite"
)

// Config holds every tunable the builder and search CLIs need.
type Config struct {
	DatasetDir      string `yaml:"dataset_dir"`
	PartialIndexDir string `yaml:"partial_index_dir"`
	FinalIndexDir   string `yaml:"final_index_dir"`
	DocMapPath      string `yaml:"doc_mapping_path"`
	AnalyticsPath   string `yaml:"analytics_path"`
	BatchSize       int    `yaml:"batch_size"`
	// HammingK is accepted and validated for interface compatibility with
	// the rest of this config, but internal/dedup's pigeonhole banding is
	// built around a fixed 4-block/16-bit-per-block split and does not
	// consult this value; dedup.HammingK is always 3.
	HammingK int `yaml:"hamming_k"`

	// AnalyticsBackend is "none" or "clickhouse": whether a build run also
	// emits one summary row to a ClickHouse sink in addition to the plain
	// text report.
	AnalyticsBackend string `yaml:"analytics_backend"`
	ClickHouseDSN    string `yaml:"clickhouse_dsn"`

	// DocMappingBackend is "none" (JSON file, default) or "sqlite": large
	// corpora may prefer a queryable doc-id -> URL store over one JSON blob.
	DocMappingBackend string `yaml:"doc_mapping_backend"`
	SQLitePath        string `yaml:"sqlite_path"`
}

// Default returns the zero-config defaults, matching what a build produces
// with no config file and no environment overrides present.
func Default() Config {
	return Config{
		DatasetDir:        DefaultDatasetDir,
		PartialIndexDir:   DefaultPartialIndexDir,
		FinalIndexDir:     DefaultFinalIndexDir,
		DocMapPath:        DefaultDocMapPath,
		AnalyticsPath:     DefaultAnalyticsPath,
		BatchSize:         DefaultBatchSize,
		HammingK:          DefaultHammingK,
		AnalyticsBackend:  backendNone,
		DocMappingBackend: backendNone,
	}
}

// Load reads configPath (if non-empty and present) as YAML over the
// defaults, then applies CDX_*-prefixed environment variable overrides,
// which take precedence over both.
func Load(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config file %s: %w", configPath, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config YAML %s: %w", configPath, err)
		}
	}

	// spec.md §6 names the bare DATASET_DIR/PARTIAL_INDEX_DIR/FINAL_INDEX_DIR
	// env vars directly; the CDX_-prefixed forms take precedence when both
	// are set, avoiding collisions with unrelated same-named variables.
	cfg.DatasetDir = getEnvOrDefault("DATASET_DIR", cfg.DatasetDir)
	cfg.DatasetDir = getEnvOrDefault("CDX_DATASET_DIR", cfg.DatasetDir)
	cfg.PartialIndexDir = getEnvOrDefault("PARTIAL_INDEX_DIR", cfg.PartialIndexDir)
	cfg.PartialIndexDir = getEnvOrDefault("CDX_PARTIAL_INDEX_DIR", cfg.PartialIndexDir)
	cfg.FinalIndexDir = getEnvOrDefault("FINAL_INDEX_DIR", cfg.FinalIndexDir)
	cfg.FinalIndexDir = getEnvOrDefault("CDX_FINAL_INDEX_DIR", cfg.FinalIndexDir)
	cfg.DocMapPath = getEnvOrDefault("CDX_DOC_MAPPING_PATH", cfg.DocMapPath)
	cfg.AnalyticsPath = getEnvOrDefault("CDX_ANALYTICS_PATH", cfg.AnalyticsPath)
	cfg.BatchSize = getEnvIntOrDefault("CDX_BATCH_SIZE", cfg.BatchSize)
	cfg.HammingK = getEnvIntOrDefault("CDX_HAMMING_K", cfg.HammingK)
	cfg.AnalyticsBackend = getEnvOrDefault("CDX_ANALYTICS_BACKEND", cfg.AnalyticsBackend)
	cfg.ClickHouseDSN = getEnvOrDefault("CDX_CLICKHOUSE_DSN", cfg.ClickHouseDSN)
	cfg.DocMappingBackend = getEnvOrDefault("CDX_DOC_MAPPING_BACKEND", cfg.DocMappingBackend)
	cfg.SQLitePath = getEnvOrDefault("CDX_SQLITE_PATH", cfg.SQLitePath)

	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("batch_size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.HammingK < 0 {
		return Config{}, fmt.Errorf("hamming_k must be non-negative, got %d", cfg.HammingK)
	}
	switch cfg.AnalyticsBackend {
	case backendNone, backendClickHouse:
	default:
		return Config{}, fmt.Errorf("unknown analytics_backend %q", cfg.AnalyticsBackend)
	}
	switch cfg.DocMappingBackend {
	case backendNone, backendSQLite:
	default:
		return Config{}, fmt.Errorf("unknown doc_mapping_backend %q", cfg.DocMappingBackend)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
