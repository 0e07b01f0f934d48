// Package config defines the top-level configuration for the quantify search
// engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by QUANTIFY_* environment
// variables.
type Config struct {
	Manifold   PlatformConfig `toml:"manifold"`
	Polymarket PlatformConfig `toml:"polymarket"`
	Kalshi     PlatformConfig `toml:"kalshi"`
	Metaculus  PlatformConfig `toml:"metaculus"`
	Redis      RedisConfig    `toml:"redis"`
	Server     ServerConfig   `toml:"server"`
	Search     SearchConfig   `toml:"search"`
	Mode       string         `toml:"mode"`
	LogLevel   string         `toml:"log_level"`
}

// PlatformConfig holds per-provider settings. All providers are public APIs;
// BaseURL exists for testing and proxies.
type PlatformConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// RedisConfig holds Redis connection parameters. Redis backs the response
// cache, the API rate limiter, and the progress signal bus; it is only
// required in server mode.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds HTTP gateway parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`

	// RateLimit is the per-client request budget per RateWindow. Zero
	// disables inbound rate limiting.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// SearchConfig tunes the aggregation layer.
type SearchConfig struct {
	// CacheTTL bounds how long an aggregated response may be served from
	// Redis before searching again.
	CacheTTL duration `toml:"cache_ttl"`
}

// duration wraps time.Duration so TOML files can use "30s" style values.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration. Every provider is enabled
// against its public API; the gateway listens on 8000 with the extension dev
// origins allowed.
func Defaults() Config {
	return Config{
		Manifold:   PlatformConfig{Enabled: true},
		Polymarket: PlatformConfig{Enabled: true},
		Kalshi:     PlatformConfig{Enabled: true},
		Metaculus:  PlatformConfig{Enabled: true},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   60,
			RateWindow:  duration{time.Minute},
		},
		Search: SearchConfig{
			CacheTTL: duration{2 * time.Minute},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"query":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// NeedsRedis reports whether the configured mode requires a Redis
// connection. The one-shot query mode runs without any infrastructure.
func (c *Config) NeedsRedis() bool {
	return strings.ToLower(c.Mode) == "server"
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, query)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if !c.Manifold.Enabled && !c.Polymarket.Enabled && !c.Kalshi.Enabled && !c.Metaculus.Enabled {
		errs = append(errs, "platforms: at least one platform must be enabled")
	}

	if c.NeedsRedis() {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if strings.ToLower(c.Mode) == "server" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be positive when rate_limit is set")
		}
	}

	if c.Search.CacheTTL.Duration < 0 {
		errs = append(errs, "search: cache_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
