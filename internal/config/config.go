// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"OBLOG_DB_PATH" envDefault:"./data/oblog.db"`
	ServerHost string `env:"OBLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OBLOG_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OBLOG_ENV" envDefault:"development"`
	LogLevel   string `env:"OBLOG_LOG_LEVEL" envDefault:"info"`

	// SessionSecret keys the CSRF token MAC. Sessions themselves are stored
	// server-side, so this never leaves the process.
	SessionSecret string `env:"OBLOG_SESSION_SECRET,required"`

	// Seeding configuration
	AdminEmail    string `env:"OBLOG_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"OBLOG_ADMIN_PASSWORD"` // Generated and logged when empty

	// Cache configuration
	RedisURL    string `env:"OBLOG_REDIS_URL"`                       // Optional Redis URL for distributed caching
	CachePrefix string `env:"OBLOG_CACHE_PREFIX" envDefault:"oblog:"` // Redis key prefix
	CacheTTL    int    `env:"OBLOG_CACHE_TTL" envDefault:"300"`      // Default cache TTL in seconds

	// Event log retention in days; older rows are pruned by the scheduler.
	EventRetentionDays int `env:"OBLOG_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("OBLOG_SERVER_PORT out of range: %d", cfg.ServerPort)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("OBLOG_SESSION_SECRET must be at least %d bytes, got %d",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	return cfg, nil
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32
