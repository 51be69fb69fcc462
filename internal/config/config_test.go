// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OBLOG_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "./data/oblog.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true by default")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true with no Redis URL")
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("CacheTTL = %d, want 300", cfg.CacheTTL)
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d, want 90", cfg.EventRetentionDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OBLOG_SESSION_SECRET", testSecret)
	t.Setenv("OBLOG_SERVER_HOST", "0.0.0.0")
	t.Setenv("OBLOG_SERVER_PORT", "9090")
	t.Setenv("OBLOG_ENV", "production")
	t.Setenv("OBLOG_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.ServerAddr(); got != "0.0.0.0:9090" {
		t.Errorf("ServerAddr() = %q, want 0.0.0.0:9090", got)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production env")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with Redis URL set")
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("OBLOG_SESSION_SECRET", testSecret)
	t.Setenv("OBLOG_SERVER_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Error("Load accepted out-of-range port")
	}
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("OBLOG_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Load accepted empty session secret")
	}

	t.Setenv("OBLOG_SESSION_SECRET", strings.Repeat("x", MinSessionSecretLength-1))
	if _, err := Load(); err == nil {
		t.Error("Load accepted short session secret")
	}
}
