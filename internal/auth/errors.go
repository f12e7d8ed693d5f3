package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers both a wrong PIN and an unknown user.
	// The two are indistinguishable to the caller; audit details tell them
	// apart internally.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidCurrentPin is returned by ChangePin when the presented
	// current PIN does not match.
	ErrInvalidCurrentPin = errors.New("current PIN is incorrect")

	// ErrInvalidUnlockCode is returned when the emergency unlock code does
	// not match the configured one.
	ErrInvalidUnlockCode = errors.New("invalid unlock code")

	// ErrRateLimited is returned when the fixed-window counter for the
	// endpoint is at its limit.
	ErrRateLimited = errors.New("too many requests")

	// ErrInvalidRole is returned for a role outside {guardian, child}.
	ErrInvalidRole = errors.New("role must be guardian or child")

	// ErrMalformedPin is returned before any hash comparison when the PIN
	// is not exactly four digits.
	ErrMalformedPin = errors.New("PIN must be exactly 4 digits")

	// ErrSessionInvalid is returned for a missing or expired session token.
	ErrSessionInvalid = errors.New("invalid or expired session")
)

// LockedError reports that an account is locked and for how much longer.
// Unlike ErrInvalidCredentials this is deliberately distinguishable to the
// end user: a locked guardian gets a countdown, not a generic failure.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.MinutesRemaining(time.Now()))
}

// MinutesRemaining returns the whole minutes left on the lock, rounded up,
// never below 1 while the lock holds.
func (e *LockedError) MinutesRemaining(now time.Time) int {
	remaining := e.Until.Sub(now)
	if remaining <= 0 {
		return 0
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
