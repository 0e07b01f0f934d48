package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies QUANTIFY_* environment variable overrides, and
// returns the final Config. An empty path skips the file and uses defaults
// plus environment only. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known QUANTIFY_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators adjust a deployment without touching the
// TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Platforms ──
	setBool(&cfg.Manifold.Enabled, "QUANTIFY_MANIFOLD_ENABLED")
	setStr(&cfg.Manifold.BaseURL, "QUANTIFY_MANIFOLD_BASE_URL")
	setBool(&cfg.Polymarket.Enabled, "QUANTIFY_POLYMARKET_ENABLED")
	setStr(&cfg.Polymarket.BaseURL, "QUANTIFY_POLYMARKET_BASE_URL")
	setBool(&cfg.Kalshi.Enabled, "QUANTIFY_KALSHI_ENABLED")
	setStr(&cfg.Kalshi.BaseURL, "QUANTIFY_KALSHI_BASE_URL")
	setBool(&cfg.Metaculus.Enabled, "QUANTIFY_METACULUS_ENABLED")
	setStr(&cfg.Metaculus.BaseURL, "QUANTIFY_METACULUS_BASE_URL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "QUANTIFY_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "QUANTIFY_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "QUANTIFY_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "QUANTIFY_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "QUANTIFY_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "QUANTIFY_REDIS_TLS_ENABLED")

	// ── Server ──
	setInt(&cfg.Server.Port, "QUANTIFY_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "QUANTIFY_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "QUANTIFY_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "QUANTIFY_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "QUANTIFY_SERVER_RATE_WINDOW")

	// ── Search ──
	setDuration(&cfg.Search.CacheTTL, "QUANTIFY_SEARCH_CACHE_TTL")

	// ── Top-level ──
	setStr(&cfg.Mode, "QUANTIFY_MODE")
	setStr(&cfg.LogLevel, "QUANTIFY_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
