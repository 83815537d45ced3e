// Package config loads server settings from an optional YAML file and the
// process environment. The upstream credential is env-only and never read
// from a file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvAPIToken must hold a Pipedrive API token. Without it the server
	// refuses to start.
	EnvAPIToken = "PIPEDRIVE_API_TOKEN"
	// EnvBaseURL overrides the upstream base URL, e.g. for a company
	// domain (https://yourcompany.pipedrive.com/api/v1) or a test server.
	EnvBaseURL = "PIPEDRIVE_BASE_URL"

	DefaultBaseURL = "https://api.pipedrive.com/v1"
	// DefaultPageSize matches the upstream's documented per-request maximum.
	DefaultPageSize = 500
	// DefaultMaxRecords bounds how many records a single aggregation may
	// scan. Collections larger than this are returned truncated with a
	// terminated_early marker.
	DefaultMaxRecords      = 10000
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultLogLevel        = "info"
)

// Config holds everything the server needs at startup. Values are fixed for
// the process lifetime once loaded.
type Config struct {
	APIToken        string
	BaseURL         string
	PageSize        int
	MaxRecords      int
	UpstreamTimeout time.Duration
	AuditDB         string
	LogLevel        string
}

// fileConfig is the YAML shape. Durations are strings ("30s") so the file
// stays readable; the credential deliberately has no field here.
type fileConfig struct {
	BaseURL         string `yaml:"base_url"`
	PageSize        int    `yaml:"page_size"`
	MaxRecords      int    `yaml:"max_records"`
	UpstreamTimeout string `yaml:"upstream_timeout"`
	AuditDB         string `yaml:"audit_db"`
	LogLevel        string `yaml:"log_level"`
}

// Default returns the built-in settings with the credential resolved from
// the environment.
func Default() Config {
	return Config{
		APIToken:        strings.TrimSpace(os.Getenv(EnvAPIToken)),
		BaseURL:         DefaultBaseURL,
		PageSize:        DefaultPageSize,
		MaxRecords:      DefaultMaxRecords,
		UpstreamTimeout: DefaultUpstreamTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// Load reads the optional YAML file at path, then applies environment
// overrides. An empty path means defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if fc.BaseURL != "" {
			cfg.BaseURL = fc.BaseURL
		}
		if fc.PageSize != 0 {
			cfg.PageSize = fc.PageSize
		}
		if fc.MaxRecords != 0 {
			cfg.MaxRecords = fc.MaxRecords
		}
		if fc.UpstreamTimeout != "" {
			d, err := time.ParseDuration(fc.UpstreamTimeout)
			if err != nil {
				return Config{}, fmt.Errorf("parse config %s: upstream_timeout: %w", path, err)
			}
			cfg.UpstreamTimeout = d
		}
		if fc.AuditDB != "" {
			cfg.AuditDB = fc.AuditDB
		}
		if fc.LogLevel != "" {
			cfg.LogLevel = fc.LogLevel
		}
	}

	// Environment wins over the file for the base URL; the token is
	// env-only to keep credentials out of config files.
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// Validate reports whether the configuration is servable. The missing-token
// message spells out where to obtain one because it is the most common
// first-run failure.
func (c Config) Validate() error {
	if c.APIToken == "" {
		return fmt.Errorf("%s is not set. Create an API token in Pipedrive (Settings > Personal preferences > API) and export it before starting the server", EnvAPIToken)
	}
	if c.PageSize < 1 || c.PageSize > DefaultPageSize {
		return fmt.Errorf("page_size must be between 1 and %d, got %d", DefaultPageSize, c.PageSize)
	}
	if c.MaxRecords < 1 {
		return fmt.Errorf("max_records must be positive, got %d", c.MaxRecords)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream_timeout must be positive, got %s", c.UpstreamTimeout)
	}
	return nil
}
