package api

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds HTTP and WebSocket transport configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// PublicDir is served at "/" when non-empty.
	PublicDir string

	// AllowedOrigins is the comma separated CORS origin list.
	AllowedOrigins string

	// MaxMessageSize is the largest inbound WebSocket frame in bytes.
	MaxMessageSize int64

	// RateLimitBurst is the token bucket capacity per connection.
	RateLimitBurst int

	// RateLimitPerSecond is the token refill rate per connection.
	RateLimitPerSecond int

	// ReadTimeout bounds reading a full HTTP request.
	ReadTimeout time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:               "3000",
		AllowedOrigins:     "*",
		MaxMessageSize:     4096,
		RateLimitBurst:     20,
		RateLimitPerSecond: 10,
		ReadTimeout:        30 * time.Second,
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithPort sets the listen port.
func WithPort(port string) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithPublicDir sets the static asset directory.
func WithPublicDir(dir string) Option {
	return func(c *Config) {
		c.PublicDir = dir
	}
}

// WithAllowedOrigins sets the CORS origin list.
func WithAllowedOrigins(origins string) Option {
	return func(c *Config) {
		c.AllowedOrigins = origins
	}
}

// WithMaxMessageSize sets the inbound frame limit.
func WithMaxMessageSize(size int64) Option {
	return func(c *Config) {
		c.MaxMessageSize = size
	}
}

// WithRateLimit sets the per-connection token bucket.
func WithRateLimit(burst, perSecond int) Option {
	return func(c *Config) {
		c.RateLimitBurst = burst
		c.RateLimitPerSecond = perSecond
	}
}

// LoadConfigFromEnv builds a Config from environment variables, falling back
// to DefaultConfig for unset or invalid values.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.PublicDir = getEnv("PUBLIC_DIR", cfg.PublicDir)
	cfg.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.MaxMessageSize = int64(getEnvInt("WS_MAX_MESSAGE_SIZE", int(cfg.MaxMessageSize)))
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.RateLimitPerSecond = getEnvInt("RATE_LIMIT_PER_SECOND", cfg.RateLimitPerSecond)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}
