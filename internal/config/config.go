// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Token store backends.
const (
	TokenStoreSQLite = "sqlite"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL   string        `env:"STAYDESK_API_BASE_URL,required"`
	APITimeout   time.Duration `env:"STAYDESK_API_TIMEOUT" envDefault:"15s"`
	APIRateLimit float64       `env:"STAYDESK_API_RATE_LIMIT" envDefault:"10"` // requests per second, 0 disables
	APIBurst     int           `env:"STAYDESK_API_BURST" envDefault:"20"`

	DBPath        string `env:"STAYDESK_DB_PATH" envDefault:"./data/staydesk.db"`
	SessionSecret string `env:"STAYDESK_SESSION_SECRET,required"`
	ServerHost    string `env:"STAYDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"STAYDESK_SERVER_PORT" envDefault:"8090"`
	Env           string `env:"STAYDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"STAYDESK_LOG_LEVEL" envDefault:"info"`

	// Admin token storage
	TokenStore  string `env:"STAYDESK_TOKEN_STORE" envDefault:"sqlite"`
	RedisURL    string `env:"STAYDESK_REDIS_URL"`
	RedisPrefix string `env:"STAYDESK_REDIS_PREFIX" envDefault:"staydesk:"`

	// List and confirmation behaviour
	PageSize        int           `env:"STAYDESK_PAGE_SIZE" envDefault:"10"`
	Debounce        time.Duration `env:"STAYDESK_DEBOUNCE" envDefault:"300ms"`
	DebounceMaxWait time.Duration `env:"STAYDESK_DEBOUNCE_MAX_WAIT" envDefault:"1s"`
	ConfirmTTL      time.Duration `env:"STAYDESK_CONFIRM_TTL" envDefault:"10m"`

	// Scheduled jobs
	SessionRecheck     string `env:"STAYDESK_SESSION_RECHECK" envDefault:"@every 10m"`
	AuditRetentionDays int    `env:"STAYDESK_AUDIT_RETENTION_DAYS" envDefault:"90"`

	Currency string `env:"STAYDESK_CURRENCY" envDefault:"INR"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// AuditRetention returns the audit retention as a duration; 0 keeps events forever.
func (c Config) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("STAYDESK_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return cfg, nil
}

// Validate checks the values env.Parse cannot.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("STAYDESK_API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL))
	}

	if len(c.SessionSecret) < MinSessionSecretLength {
		errs = append(errs, fmt.Errorf("STAYDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret)))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			errs = append(errs, errors.New("STAYDESK_SESSION_SECRET is a known default value and must not be used"))
		}
	}

	switch c.TokenStore {
	case TokenStoreSQLite, TokenStoreMemory:
	case TokenStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("STAYDESK_REDIS_URL is required when STAYDESK_TOKEN_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STAYDESK_TOKEN_STORE must be one of sqlite, redis, memory, got %q", c.TokenStore))
	}

	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("STAYDESK_PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("STAYDESK_DEBOUNCE must be positive, got %s", c.Debounce))
	}
	if c.DebounceMaxWait != 0 && c.DebounceMaxWait < c.Debounce {
		errs = append(errs, fmt.Errorf("STAYDESK_DEBOUNCE_MAX_WAIT must be 0 or at least STAYDESK_DEBOUNCE, got %s", c.DebounceMaxWait))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("STAYDESK_API_TIMEOUT must be positive, got %s", c.APITimeout))
	}
	if c.APIRateLimit < 0 {
		errs = append(errs, fmt.Errorf("STAYDESK_API_RATE_LIMIT must not be negative, got %v", c.APIRateLimit))
	}
	if c.AuditRetentionDays < 0 {
		errs = append(errs, fmt.Errorf("STAYDESK_AUDIT_RETENTION_DAYS must not be negative, got %d", c.AuditRetentionDays))
	}

	return errors.Join(errs...)
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
