package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SessionLifetime != time.Hour {
		t.Errorf("SessionLifetime = %v, want 1h", cfg.SessionLifetime)
	}
	if cfg.RateLimitAuth != 5 || cfg.RateLimitAuthWindow != 5*time.Minute {
		t.Errorf("auth rate limit = %d/%v, want 5/5m", cfg.RateLimitAuth, cfg.RateLimitAuthWindow)
	}
	if cfg.PinMaxAttempts != 5 || cfg.PinLockoutDuration != 5*time.Minute {
		t.Errorf("lockout = %d/%v, want 5/5m", cfg.PinMaxAttempts, cfg.PinLockoutDuration)
	}
	if !cfg.LogAudit {
		t.Error("LogAudit default should be true")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_LIFETIME", "7200")
	t.Setenv("RATE_LIMIT_AUTH", "10")
	t.Setenv("LOG_AUDIT", "false")
	t.Setenv("GUEST_TOKEN_LIFETIME_DAYS", "7")

	cfg := Load()

	if cfg.SessionLifetime != 2*time.Hour {
		t.Errorf("SessionLifetime = %v, want 2h", cfg.SessionLifetime)
	}
	if cfg.RateLimitAuth != 10 {
		t.Errorf("RateLimitAuth = %d, want 10", cfg.RateLimitAuth)
	}
	if cfg.LogAudit {
		t.Error("LogAudit should be false")
	}
	if cfg.GuestTokenLifetime != 7*24*time.Hour {
		t.Errorf("GuestTokenLifetime = %v, want 168h", cfg.GuestTokenLifetime)
	}
}

func TestLoad_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("SESSION_LIFETIME", "soon")
	t.Setenv("PIN_MAX_ATTEMPTS", "-3")
	t.Setenv("LOG_AUDIT", "maybe")

	cfg := Load()

	if cfg.SessionLifetime != time.Hour {
		t.Errorf("SessionLifetime = %v, want default 1h", cfg.SessionLifetime)
	}
	if cfg.PinMaxAttempts != 5 {
		t.Errorf("PinMaxAttempts = %d, want default 5", cfg.PinMaxAttempts)
	}
	if !cfg.LogAudit {
		t.Error("LogAudit should fall back to true")
	}
}
