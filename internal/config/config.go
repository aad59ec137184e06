package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alvmarrod/sidebar-weaver/internal/storage"
	"github.com/alvmarrod/sidebar-weaver/internal/version"
	"gopkg.in/yaml.v3"
)

// Default configuration values
const (
	DefaultSeed               = "microfinance"
	DefaultCheckpointInterval = 10
	DefaultRequestTimeoutMs   = 10000
	DefaultRequestDelayMs     = 1000
	DefaultMetricsPath        = "metrics.json"
)

// DefaultUserAgent identifies the crawler to the platform
var DefaultUserAgent = "sidebar-weaver/" + version.Version + " (community graph crawler)"

// Config holds all runtime configuration parameters
type Config struct {
	Seed               string `json:"seed" yaml:"seed"`
	CrawledPath        string `json:"crawled_path" yaml:"crawled_path"`
	ToVisitPath        string `json:"to_visit_path" yaml:"to_visit_path"`
	MaxIterations      int    `json:"max_iterations" yaml:"max_iterations"`
	CheckpointInterval int    `json:"checkpoint_interval" yaml:"checkpoint_interval"`

	CheckpointVisitedPath  string `json:"checkpoint_visited_path" yaml:"checkpoint_visited_path"`
	CheckpointFrontierPath string `json:"checkpoint_frontier_path" yaml:"checkpoint_frontier_path"`
	FinalVisitedPath       string `json:"final_visited_path" yaml:"final_visited_path"`
	FinalFrontierPath      string `json:"final_frontier_path" yaml:"final_frontier_path"`

	DBPath      string `json:"db_path" yaml:"db_path"`
	MetricsPath string `json:"metrics_path" yaml:"metrics_path"`

	BaseURL          string `json:"base_url" yaml:"base_url"`
	TokenURL         string `json:"token_url" yaml:"token_url"`
	UserAgent        string `json:"user_agent" yaml:"user_agent"`
	RequestTimeoutMs int    `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	RequestDelayMs   int    `json:"request_delay_ms" yaml:"request_delay_ms"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// LoadConfig reads and validates configuration from a JSON or YAML file.
// The format is chosen by extension (.yaml/.yml, anything else is JSON).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// SnapshotPaths returns the four snapshot slots
func (c *Config) SnapshotPaths() storage.SnapshotPaths {
	return storage.SnapshotPaths{
		CheckpointVisited:  c.CheckpointVisitedPath,
		CheckpointFrontier: c.CheckpointFrontierPath,
		FinalVisited:       c.FinalVisitedPath,
		FinalFrontier:      c.FinalFrontierPath,
	}
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.Seed == "" {
		cfg.Seed = DefaultSeed
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = DefaultCheckpointInterval
	}
	if cfg.CheckpointVisitedPath == "" {
		cfg.CheckpointVisitedPath = storage.DefaultCheckpointVisitedPath
	}
	if cfg.CheckpointFrontierPath == "" {
		cfg.CheckpointFrontierPath = storage.DefaultCheckpointFrontierPath
	}
	if cfg.FinalVisitedPath == "" {
		cfg.FinalVisitedPath = storage.DefaultFinalVisitedPath
	}
	if cfg.FinalFrontierPath == "" {
		cfg.FinalFrontierPath = storage.DefaultFinalFrontierPath
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = DefaultMetricsPath
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if cfg.RequestDelayMs == 0 {
		cfg.RequestDelayMs = DefaultRequestDelayMs
	}
}

// Validate checks that values are sensible
func Validate(cfg *Config) error {
	if cfg.Seed == "" {
		return ErrNoSeed
	}
	if cfg.MaxIterations < 0 {
		return ErrInvalidMaxIterations
	}
	if cfg.CheckpointInterval < 1 {
		return ErrInvalidCheckpointInterval
	}
	if cfg.RequestTimeoutMs < 1000 {
		return ErrInvalidTimeout
	}
	if cfg.RequestDelayMs < 0 {
		return ErrInvalidDelay
	}

	outputs := []string{
		cfg.CheckpointVisitedPath,
		cfg.CheckpointFrontierPath,
		cfg.FinalVisitedPath,
		cfg.FinalFrontierPath,
	}
	seen := make(map[string]bool, len(outputs))
	for _, p := range outputs {
		clean := filepath.Clean(p)
		if seen[clean] {
			return fmt.Errorf("%w: %s", ErrOutputCollision, p)
		}
		seen[clean] = true
	}
	for _, in := range []string{cfg.CrawledPath, cfg.ToVisitPath} {
		if in != "" && seen[filepath.Clean(in)] {
			return fmt.Errorf("%w: %s", ErrOutputCollision, in)
		}
	}

	return nil
}
