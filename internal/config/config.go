// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable; every value has a working default so a bare install
// starts without a .env file.
type Config struct {
	DBPath string // FAMTRACK_DB_PATH
	Port   string // FAMTRACK_PORT

	SessionLifetime time.Duration // SESSION_LIFETIME (seconds, sliding window length)

	RateLimitAuth       int           // RATE_LIMIT_AUTH (login endpoint)
	RateLimitAuthWindow time.Duration // RATE_LIMIT_AUTH_WINDOW (seconds)
	RateLimitAPI        int           // RATE_LIMIT_API (general endpoints)
	RateLimitAPIWindow  time.Duration // RATE_LIMIT_API_WINDOW (seconds)

	PinHashCost        int           // PIN_HASH_COST (bcrypt work factor)
	PinMaxAttempts     int           // PIN_MAX_ATTEMPTS
	PinLockoutDuration time.Duration // PIN_LOCKOUT_DURATION (seconds)

	UnlockCode string // UNLOCK_CODE (static emergency bypass; rotate post-install)
	LogAudit   bool   // LOG_AUDIT

	GuestTokenLifetime time.Duration // GUEST_TOKEN_LIFETIME_DAYS

	DefaultGuardianPin string // DEFAULT_GUARDIAN_PIN (first-run seed)
	CleanupSecret      string // CLEANUP_SECRET (maintenance endpoint guard)
}

// Load reads configuration from the environment
func Load() Config {
	return Config{
		DBPath: envOrDefault("FAMTRACK_DB_PATH", "./famtrack.db"),
		Port:   envOrDefault("FAMTRACK_PORT", "8080"),

		SessionLifetime: envSecondsOrDefault("SESSION_LIFETIME", 3600),

		RateLimitAuth:       envIntOrDefault("RATE_LIMIT_AUTH", 5),
		RateLimitAuthWindow: envSecondsOrDefault("RATE_LIMIT_AUTH_WINDOW", 300),
		RateLimitAPI:        envIntOrDefault("RATE_LIMIT_API", 60),
		RateLimitAPIWindow:  envSecondsOrDefault("RATE_LIMIT_API_WINDOW", 60),

		PinHashCost:        envIntOrDefault("PIN_HASH_COST", 10),
		PinMaxAttempts:     envIntOrDefault("PIN_MAX_ATTEMPTS", 5),
		PinLockoutDuration: envSecondsOrDefault("PIN_LOCKOUT_DURATION", 300),

		UnlockCode: os.Getenv("UNLOCK_CODE"),
		LogAudit:   envBoolOrDefault("LOG_AUDIT", true),

		GuestTokenLifetime: envDaysOrDefault("GUEST_TOKEN_LIFETIME_DAYS", 30),

		DefaultGuardianPin: envOrDefault("DEFAULT_GUARDIAN_PIN", "0000"),
		CleanupSecret:      os.Getenv("CLEANUP_SECRET"),
	}
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}

func envDaysOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * 24 * time.Hour
}

func envBoolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
