// Package config loads and validates index configuration from YAML files
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DuplicatePolicy decides what adding an already-indexed ID does.
type DuplicatePolicy string

const (
	// DuplicateReject fails the add with ErrAlreadyIndexed.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateReplace removes the previous entry and indexes the new content.
	DuplicateReplace DuplicatePolicy = "replace"
)

// Config is the top-level configuration.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// IndexConfig controls tokenization and add behaviour.
type IndexConfig struct {
	Punctuation      string          `yaml:"punctuation"`
	DuplicatePolicy  DuplicatePolicy `yaml:"duplicatePolicy"`
	BatchConcurrency int             `yaml:"batchConcurrency"`
}

// SearchConfig controls result limits for the command-line tool.
type SearchConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls Prometheus collector registration.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Index:   DefaultIndexConfig(),
		Search:  SearchConfig{DefaultLimit: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: false, Namespace: "textindex"},
	}
}

func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Punctuation:      ".,!\"':;?",
		DuplicatePolicy:  DuplicateReject,
		BatchConcurrency: 4,
	}
}

func (c *Config) Validate() error {
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if c.Search.DefaultLimit < 0 {
		return fmt.Errorf("search.defaultLimit must not be negative, got %d", c.Search.DefaultLimit)
	}
	return nil
}

func (c IndexConfig) Validate() error {
	switch c.DuplicatePolicy {
	case DuplicateReject, DuplicateReplace:
	default:
		return fmt.Errorf("index.duplicatePolicy must be %q or %q, got %q", DuplicateReject, DuplicateReplace, c.DuplicatePolicy)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("index.batchConcurrency must be positive, got %d", c.BatchConcurrency)
	}
	return nil
}

// applyEnvOverrides reads TI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("TI_INDEX_PUNCTUATION"); ok {
		cfg.Index.Punctuation = v
	}
	if v := os.Getenv("TI_INDEX_DUPLICATE_POLICY"); v != "" {
		cfg.Index.DuplicatePolicy = DuplicatePolicy(v)
	}
	if v := os.Getenv("TI_INDEX_BATCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.BatchConcurrency = n
		}
	}
	if v := os.Getenv("TI_SEARCH_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultLimit = n
		}
	}
	if v := os.Getenv("TI_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TI_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TI_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("TI_METRICS_NAMESPACE"); v != "" {
		cfg.Metrics.Namespace = v
	}
}
