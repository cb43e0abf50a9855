package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Env      string
	Port     string
	LogLevel slog.Level

	MaxContentBytes   int64
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Render defaults applied when a request leaves a flag out.
	DefaultAccessibility bool
	DefaultSanitize      bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),
	}

	var err error
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.MaxContentBytes, err = strconv.ParseInt(getEnv("MAX_CONTENT_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxContentBytes <= 0 {
		return nil, fmt.Errorf("%w: MAX_CONTENT_BYTES must be a positive integer", ErrInvalid)
	}
	if cfg.RateLimitRequests, err = strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "60")); err != nil || cfg.RateLimitRequests <= 0 {
		return nil, fmt.Errorf("%w: RATE_LIMIT_REQUESTS must be a positive integer", ErrInvalid)
	}
	if cfg.RateLimitWindow, err = time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m")); err != nil || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("%w: RATE_LIMIT_WINDOW must be a positive duration", ErrInvalid)
	}
	if cfg.DefaultAccessibility, err = strconv.ParseBool(getEnv("DEFAULT_ACCESSIBILITY", "true")); err != nil {
		return nil, fmt.Errorf("%w: DEFAULT_ACCESSIBILITY: %v", ErrInvalid, err)
	}
	if cfg.DefaultSanitize, err = strconv.ParseBool(getEnv("DEFAULT_SANITIZE", "true")); err != nil {
		return nil, fmt.Errorf("%w: DEFAULT_SANITIZE: %v", ErrInvalid, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalid, err)
	}
	return level, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr is the listen address for the HTTP service.
func (c *Config) Addr() string {
	return ":" + c.Port
}
