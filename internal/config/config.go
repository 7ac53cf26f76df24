package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the console needs at startup.
type Config struct {
	HTTPAddr string

	// Remote back end
	BackendURL        string
	GatewayTimeout    time.Duration
	GatewayPageSize   int
	GatewayRateLimit  float64 // requests per second, 0 disables limiting
	GatewayBurst      int
	RefetchAfterWrite bool

	CORSOrigins []string

	LogFile   string
	LogLevel  string
	LogStdout bool
	GinMode   string
}

// Load reads .env (if present) and then the environment, falling back to defaults.
func Load() (*Config, error) {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}

	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		BackendURL:  strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),
		LogFile:     getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		GinMode:     getEnv("GIN_MODE", "release"),
	}

	var err error
	if cfg.GatewayTimeout, err = time.ParseDuration(getEnv("GATEWAY_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT: %w", err)
	}
	if cfg.GatewayPageSize, err = strconv.Atoi(getEnv("GATEWAY_PAGE_SIZE", "100")); err != nil {
		return nil, fmt.Errorf("GATEWAY_PAGE_SIZE: %w", err)
	}
	if cfg.GatewayRateLimit, err = strconv.ParseFloat(getEnv("GATEWAY_RATE_LIMIT", "20"), 64); err != nil {
		return nil, fmt.Errorf("GATEWAY_RATE_LIMIT: %w", err)
	}
	if cfg.GatewayBurst, err = strconv.Atoi(getEnv("GATEWAY_BURST", "5")); err != nil {
		return nil, fmt.Errorf("GATEWAY_BURST: %w", err)
	}
	if cfg.RefetchAfterWrite, err = strconv.ParseBool(getEnv("REFETCH_AFTER_WRITE", "false")); err != nil {
		return nil, fmt.Errorf("REFETCH_AFTER_WRITE: %w", err)
	}
	if cfg.LogStdout, err = strconv.ParseBool(getEnv("LOG_STDOUT", "true")); err != nil {
		return nil, fmt.Errorf("LOG_STDOUT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parse but make no sense.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL %q is not an absolute URL", c.BackendURL)
	}
	if c.GatewayPageSize <= 0 {
		return errors.New("GATEWAY_PAGE_SIZE must be positive")
	}
	if c.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}
	if c.GatewayRateLimit < 0 {
		return errors.New("GATEWAY_RATE_LIMIT must not be negative")
	}
	if c.GatewayRateLimit > 0 && c.GatewayBurst <= 0 {
		return errors.New("GATEWAY_BURST must be positive when rate limiting is on")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
