package auth

import (
	"time"

	"famtrack-backend/internal/audit"
	"famtrack-backend/internal/database"
	"famtrack-backend/internal/models"
)

// LockoutPolicy escalates repeated PIN failures on lockable accounts to a
// timed lock. Whether a role is subject to lockout at all is declared once on
// the Role type, not re-checked at call sites.
type LockoutPolicy struct {
	attempts *database.AttemptRepo
	users    *database.UserRepo
	auditLog *audit.Logger

	maxAttempts int
	duration    time.Duration
}

// NewLockoutPolicy creates a lockout policy.
// maxAttempts failures within duration lock the account for duration.
func NewLockoutPolicy(attempts *database.AttemptRepo, users *database.UserRepo, auditLog *audit.Logger, maxAttempts int, duration time.Duration) *LockoutPolicy {
	return &LockoutPolicy{
		attempts:    attempts,
		users:       users,
		auditLog:    auditLog,
		maxAttempts: maxAttempts,
		duration:    duration,
	}
}

// RegisterFailure records one failed attempt for the user. If the failure
// count within the window reaches the limit, the account is locked and the
// lock expiry is returned; nil otherwise. Accounts whose role is not lockable
// are never counted or locked.
func (p *LockoutPolicy) RegisterFailure(user *models.User, now time.Time) (*time.Time, error) {
	if !user.Role.Lockable() {
		return nil, nil
	}

	count, err := p.attempts.Record(user.ID, p.duration, now)
	if err != nil {
		return nil, err
	}

	if count < p.maxAttempts {
		return nil, nil
	}

	until := now.Add(p.duration)
	if err := p.users.SetLockedUntil(user.ID, until); err != nil {
		return nil, err
	}

	p.auditLog.Log(models.ActionPinLocked, models.EntityUser, audit.ID(user.ID), nil, map[string]interface{}{
		"attempts":     count,
		"locked_until": until.Format(time.RFC3339),
	})

	return &until, nil
}

// Reset clears the failure ledger for the user after a successful login or an
// explicit unlock. A no-op for non-lockable roles.
func (p *LockoutPolicy) Reset(user *models.User) error {
	if !user.Role.Lockable() {
		return nil
	}
	return p.attempts.Reset(user.ID)
}
