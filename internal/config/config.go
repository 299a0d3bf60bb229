package config

import (
	"fmt"
)

// Config holds all runtime configuration parameters
type Config struct {
	User             string
	Password         string
	Host             string
	OpenAPIPath      string
	LogDir           string
	DBPath           string
	RequestTimeoutMs int
	RetryAttempts    int
	InsecureTLS      bool
}

// Load applies defaults to a flag-populated Config and validates it
func Load(cfg *Config) (*Config, error) {
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 30000
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if cfg.User == "" {
		return fmt.Errorf("user is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("password is required")
	}
	if cfg.Host == "" {
		return fmt.Errorf("rhost is required")
	}
	if cfg.OpenAPIPath == "" {
		return fmt.Errorf("openapi is required")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request timeout must be >= 1000ms")
	}
	if cfg.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be >= 1")
	}
	return nil
}
