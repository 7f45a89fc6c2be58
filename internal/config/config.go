package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/rbx-client/pkg/egress"
	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the gateway.
type Config struct {
	// Service Configuration
	HTTPPort        int           `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool          `env:"LOG_PRETTY" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Egress: comma-separated proxy URLs, empty for direct mode
	ProxyURL string `env:"PROXY_URL"`

	// Request Executor
	UserAgent      string        `env:"USER_AGENT" envDefault:"rbx-client/0.1.0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	MaxAttempts    int           `env:"MAX_ATTEMPTS" envDefault:"3"`

	// Collections
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"120s"`
	PageSize int           `env:"PAGE_SIZE" envDefault:"10"`

	// Caller cooldown; Redis is optional and shares state between replicas
	Cooldown time.Duration `env:"COOLDOWN" envDefault:"2s"`
	RedisURL string        `env:"REDIS_URL"`

	// API_BASE_URL points every API host at one base URL (tests, mirrors)
	APIBaseURL string `env:"API_BASE_URL"`

	descriptors []egress.Descriptor
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.ProxyURL = strings.TrimSpace(cfg.ProxyURL)
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	descriptors, err := egress.ParseDescriptors(cfg.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("PROXY_URL: %w", err)
	}
	cfg.descriptors = descriptors

	return cfg, nil
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535 (got %d)", c.HTTPPort)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be >= 1 (got %d)", c.MaxAttempts)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be > 0 (got %s)", c.CacheTTL)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be >= 1 (got %d)", c.PageSize)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("COOLDOWN must be >= 0 (got %s)", c.Cooldown)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("USER_AGENT must not be empty")
	}
	return nil
}

// Descriptors returns the parsed egress descriptors.
func (c *Config) Descriptors() []egress.Descriptor {
	return c.descriptors
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UsesRedis reports whether cooldown state is kept in Redis.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}
