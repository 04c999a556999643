package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobtrend/internal/adapter"
	"github.com/amishk599/jobtrend/internal/fetch"
)

// Config is the root configuration for jobtrend.
type Config struct {
	SnapshotPath    string
	HistoryDB       string
	CollectInterval time.Duration // how often `start` re-collects
	CacheTTL        time.Duration // how long `serve` reuses an aggregate
	HTTP            HTTPConfig
	Retry           RetryConfig
	RateLimit       RateLimitConfig
	Serve           ServeConfig
	Sources         []SourceConfig
}

// HTTPConfig controls the per-source transport.
type HTTPConfig struct {
	Timeout time.Duration // per request
}

// RetryConfig is the shared retry policy; sources may override Attempts.
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration // wait after a failed attempt
	Jitter   time.Duration // random extra pause added to each source's politeness delay
}

// RateLimitConfig controls per-host request spacing.
type RateLimitConfig struct {
	MinDelay time.Duration // minimum gap between requests to the same host
}

// ServeConfig controls the feed API.
type ServeConfig struct {
	Addr string
}

// SourceConfig describes one source to collect from.
type SourceConfig struct {
	Name       string        // source kind, e.g. "remotive"
	Enabled    bool
	URL        string        // optional endpoint override
	Attempts   int           // zero uses Retry.Attempts
	Politeness time.Duration // zero uses the source's built-in pause
}

const (
	defaultSnapshotPath = "data/all_jobs.csv"
	defaultHistoryDB    = "data/history.db"
	defaultServeAddr    = ":8080"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	SnapshotPath    string             `yaml:"snapshot_path"`
	HistoryDB       string             `yaml:"history_db"`
	CollectInterval string             `yaml:"collect_interval"`
	CacheTTL        string             `yaml:"cache_ttl"`
	HTTP            rawHTTPConfig      `yaml:"http"`
	Retry           rawRetryConfig     `yaml:"retry"`
	RateLimit       rawRateLimitConfig `yaml:"rate_limit"`
	Serve           ServeConfig        `yaml:"serve"`
	Sources         []rawSourceConfig  `yaml:"sources"`
}

type rawHTTPConfig struct {
	Timeout string `yaml:"timeout"`
}

type rawRetryConfig struct {
	Attempts *int   `yaml:"attempts"`
	Backoff  string `yaml:"backoff"`
	Jitter   string `yaml:"jitter"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

type rawSourceConfig struct {
	Name       string `yaml:"name"`
	Enabled    *bool  `yaml:"enabled"` // absent means enabled
	URL        string `yaml:"url"`
	Attempts   int    `yaml:"attempts"`
	Politeness string `yaml:"politeness"`
}

// Default returns the configuration used when no config file exists: every
// source enabled in registration order.
func Default() *Config {
	cfg := &Config{
		SnapshotPath:    defaultSnapshotPath,
		HistoryDB:       defaultHistoryDB,
		CollectInterval: time.Hour,
		CacheTTL:        time.Hour,
		HTTP:            HTTPConfig{Timeout: fetch.DefaultTimeout},
		Retry:           RetryConfig{Attempts: 3, Backoff: 2 * time.Second},
		RateLimit:       RateLimitConfig{MinDelay: 2 * time.Second},
		Serve:           ServeConfig{Addr: defaultServeAddr},
	}
	for _, kind := range adapter.Kinds {
		cfg.Sources = append(cfg.Sources, SourceConfig{Name: kind, Enabled: true})
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// Keys left out of the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if raw.SnapshotPath != "" {
		cfg.SnapshotPath = raw.SnapshotPath
	}
	if raw.HistoryDB != "" {
		cfg.HistoryDB = raw.HistoryDB
	}
	if raw.Serve.Addr != "" {
		cfg.Serve.Addr = raw.Serve.Addr
	}
	if raw.Retry.Attempts != nil {
		cfg.Retry.Attempts = *raw.Retry.Attempts
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"collect_interval", raw.CollectInterval, &cfg.CollectInterval},
		{"cache_ttl", raw.CacheTTL, &cfg.CacheTTL},
		{"http.timeout", raw.HTTP.Timeout, &cfg.HTTP.Timeout},
		{"retry.backoff", raw.Retry.Backoff, &cfg.Retry.Backoff},
		{"retry.jitter", raw.Retry.Jitter, &cfg.Retry.Jitter},
		{"rate_limit.min_delay", raw.RateLimit.MinDelay, &cfg.RateLimit.MinDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
		*d.dst = v
	}

	if raw.Sources != nil {
		cfg.Sources = make([]SourceConfig, 0, len(raw.Sources))
		for _, rs := range raw.Sources {
			sc := SourceConfig{
				Name:     rs.Name,
				Enabled:  rs.Enabled == nil || *rs.Enabled,
				URL:      rs.URL,
				Attempts: rs.Attempts,
			}
			if rs.Politeness != "" {
				sc.Politeness, err = time.ParseDuration(rs.Politeness)
				if err != nil {
					return nil, fmt.Errorf("parse sources[%s].politeness %q: %w", rs.Name, rs.Politeness, err)
				}
			}
			cfg.Sources = append(cfg.Sources, sc)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when path does not exist
// and was not asked for explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// EnabledSources returns the enabled sources in configured order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// SourceSpecs turns the enabled sources into adapter specs, in order,
// layering config overrides on each source's defaults.
func (c *Config) SourceSpecs() []adapter.SourceSpec {
	var specs []adapter.SourceSpec
	for _, s := range c.EnabledSources() {
		spec := adapter.DefaultSpec(s.Name, c.Retry.Attempts, c.Retry.Backoff)
		spec.URL = s.URL
		spec.Timeout = c.HTTP.Timeout
		spec.Policy.Jitter = c.Retry.Jitter
		if s.Attempts > 0 {
			spec.Policy.Attempts = s.Attempts
		}
		if s.Politeness > 0 {
			spec.Policy.Politeness = s.Politeness
		}
		specs = append(specs, spec)
	}
	return specs
}

func validate(cfg *Config) error {
	if cfg.CollectInterval <= 0 {
		return fmt.Errorf("collect_interval must be positive, got %v", cfg.CollectInterval)
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", cfg.CacheTTL)
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Retry.Attempts < 1 || cfg.Retry.Attempts > 10 {
		return fmt.Errorf("retry.attempts must be between 1 and 10, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff < 0 || cfg.Retry.Jitter < 0 || cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("retry and rate_limit durations must not be negative")
	}
	if cfg.SnapshotPath == "" {
		return fmt.Errorf("snapshot_path must not be empty")
	}

	seen := make(map[string]bool)
	enabled := 0
	for _, s := range cfg.Sources {
		if !slices.Contains(adapter.Kinds, s.Name) {
			return fmt.Errorf("unknown source %q (supported: %v)", s.Name, adapter.Kinds)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %q listed twice", s.Name)
		}
		seen[s.Name] = true
		if s.Attempts < 0 || s.Politeness < 0 {
			return fmt.Errorf("source %q: attempts and politeness must not be negative", s.Name)
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	return nil
}
