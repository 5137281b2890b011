// Package config loads application settings from environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Defaults match a local setup
// talking to the public GitHub API.
type Config struct {
	APIHost               string `env:"API_HOST" envDefault:"0.0.0.0"`
	APIPort               int    `env:"API_PORT" envDefault:"8000"`
	GitHubAPIBaseURL      string `env:"GITHUB_API_BASE_URL" envDefault:"https://api.github.com"`
	GitHubToken           string `env:"GITHUB_TOKEN"`
	CacheTTLSeconds       int    `env:"CACHE_TTL_SECONDS" envDefault:"600"`
	CacheMaxSize          int    `env:"CACHE_MAX_SIZE" envDefault:"1000"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// Load parses configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	parsed, err := url.Parse(c.GitHubAPIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid GITHUB_API_BASE_URL %q", c.GitHubAPIBaseURL)
	}
	positives := []struct {
		name  string
		value int
	}{
		{"API_PORT", c.APIPort},
		{"CACHE_TTL_SECONDS", c.CacheTTLSeconds},
		{"CACHE_MAX_SIZE", c.CacheMaxSize},
		{"REQUEST_TIMEOUT_SECONDS", c.RequestTimeoutSeconds},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the upstream request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Addr returns the host:port the HTTP server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}
