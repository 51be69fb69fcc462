// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"testing"
	"time"
)

func testLoginProtection() *LoginProtection {
	return NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100, // effectively unlimited for lockout tests
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
}

func TestAllowIPRateLimits(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       0.001,
		IPBurst:           2,
		MaxFailedAttempts: 5,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	if !lp.AllowIP("10.0.0.1") {
		t.Error("first request denied")
	}
	if !lp.AllowIP("10.0.0.1") {
		t.Error("second request within burst denied")
	}
	if lp.AllowIP("10.0.0.1") {
		t.Error("third request allowed beyond burst")
	}

	// A different IP has its own limiter.
	if !lp.AllowIP("10.0.0.2") {
		t.Error("fresh IP denied")
	}
}

func TestAccountLockout(t *testing.T) {
	lp := testLoginProtection()
	email := "alice@example.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account locked before any failures")
	}

	for i := 0; i < 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("locked after %d attempts, want lockout at 3", i+1)
		}
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("not locked after reaching max failed attempts")
	}
	if duration != time.Minute {
		t.Errorf("lockout duration = %v, want %v", duration, time.Minute)
	}

	if locked, remaining := lp.IsAccountLocked(email); !locked || remaining <= 0 {
		t.Errorf("IsAccountLocked = %v, %v after lockout", locked, remaining)
	}
}

func TestLockoutBackoffDoubles(t *testing.T) {
	lp := testLoginProtection()
	email := "alice@example.com"

	for i := 0; i < 3; i++ {
		lp.RecordFailedAttempt(email)
	}

	// Second round of failures doubles the lockout.
	var duration time.Duration
	var locked bool
	for i := 0; i < 3; i++ {
		locked, duration = lp.RecordFailedAttempt(email)
	}
	if !locked {
		t.Fatal("second lockout not triggered")
	}
	if duration != 2*time.Minute {
		t.Errorf("second lockout duration = %v, want %v", duration, 2*time.Minute)
	}
}

func TestSuccessfulLoginClearsFailures(t *testing.T) {
	lp := testLoginProtection()
	email := "alice@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	// Counter restarts; two more failures must not lock.
	lp.RecordFailedAttempt(email)
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("locked despite successful login resetting the counter")
	}
}
