package corpus

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full corpus service configuration.
type Config struct {
	Listen            string `yaml:"listen"`
	DBPath            string `yaml:"db_path"`
	Workers           int    `yaml:"workers"`
	FallbackWorkers   int    `yaml:"fallback_workers"`
	ExtractTimeoutSec int    `yaml:"extract_timeout_sec"`
	MaxTextBytes      int    `yaml:"max_text_bytes"`

	// FallbackURL points at the generic extraction service (Tika).
	// Empty disables the fallback entirely.
	FallbackURL string `yaml:"fallback_url"`

	// RetryFallback retries a file on the fallback service after its
	// dedicated extractor failed. Off by default: a dedicated failure
	// usually means a damaged file, not a missing capability.
	RetryFallback bool `yaml:"retry_fallback"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:            ":8082",
		DBPath:            "dlm_reader.db",
		Workers:           4,
		FallbackWorkers:   1,
		ExtractTimeoutSec: 60,
		MaxTextBytes:      100_000,
	}
}

// LoadConfig reads and parses a YAML config file, merged over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if c.FallbackWorkers <= 0 {
		return fmt.Errorf("fallback_workers must be > 0")
	}
	if c.FallbackWorkers > c.Workers {
		return fmt.Errorf("fallback_workers must not exceed workers")
	}
	if c.ExtractTimeoutSec <= 0 {
		return fmt.Errorf("extract_timeout_sec must be > 0")
	}
	if c.MaxTextBytes <= 0 {
		return fmt.Errorf("max_text_bytes must be > 0")
	}
	return nil
}

// ExtractTimeout returns the per-file extraction deadline.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.ExtractTimeoutSec) * time.Second
}
