package auth

import (
	"database/sql"
	"errors"
	"time"

	"famtrack-backend/internal/audit"
	"famtrack-backend/internal/database"
	"famtrack-backend/internal/models"
)

// Config holds the auth subsystem's tunables
type Config struct {
	SessionLifetime     time.Duration
	RateLimitAuth       int
	RateLimitAuthWindow time.Duration
	PinHashCost         int
	PinMaxAttempts      int
	PinLockoutDuration  time.Duration
	UnlockCode          string
}

// Service is the authentication facade. A login request flows through the
// rate limiter, the credential check (consulting the lockout policy), session
// creation, and the audit logger, strictly in that order.
type Service struct {
	users    *database.UserRepo
	sessions *database.SessionRepo
	limiter  *RateLimiter
	lockout  *LockoutPolicy
	auditLog *audit.Logger
	cfg      Config

	now func() time.Time
}

// NewService creates a new auth service wired to the given store handle
func NewService(db *sql.DB, auditLog *audit.Logger, cfg Config) *Service {
	users := database.NewUserRepo(db)
	attempts := database.NewAttemptRepo(db)

	return &Service{
		users:    users,
		sessions: database.NewSessionRepo(db),
		limiter:  NewRateLimiter(database.NewRateLimitRepo(db), auditLog),
		lockout:  NewLockoutPolicy(attempts, users, auditLog, cfg.PinMaxAttempts, cfg.PinLockoutDuration),
		auditLog: auditLog,
		cfg:      cfg,
		now:      time.Now,
	}
}

// RateLimiter exposes the shared limiter for general API middleware
func (s *Service) RateLimiter() *RateLimiter {
	return s.limiter
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	Token     string         `json:"token"`
	User      *models.User   `json:"user"`
	Children  []*models.User `json:"children,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Login authenticates a PIN and creates a session. The gates run in a fixed
// order; each failure short-circuits the rest.
func (s *Service) Login(role models.Role, userID int64, pin, clientIP string) (*LoginResponse, error) {
	now := s.now().UTC()

	// Gate 1: login endpoint rate limit
	allowed, err := s.limiter.Check(clientIP, EndpointLogin, s.cfg.RateLimitAuth, s.cfg.RateLimitAuthWindow)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	// Gates 2 and 3: input validation, before any store or hash work
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if !ValidPin(pin) {
		return nil, ErrMalformedPin
	}

	// Gate 4: credential lookup. An unknown user is indistinguishable from a
	// wrong PIN to the caller; the audit detail carries the real reason.
	user, err := s.users.GetByIDAndRole(userID, role)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			s.auditLog.Log(models.ActionPinFailed, models.EntityUser, audit.ID(userID), nil, map[string]interface{}{
				"reason": "unknown_user",
				"role":   role,
				"ip":     clientIP,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Gate 5: active lock wins over everything, including a correct PIN.
	// Attempts against a locked account are still audited so hammering a
	// locked credential leaves a trace.
	if user.Locked(now) {
		s.auditLog.Log(models.ActionPinFailed, models.EntityUser, audit.ID(user.ID), nil, map[string]interface{}{
			"reason": "locked",
			"role":   user.Role,
			"ip":     clientIP,
		})
		return nil, &LockedError{Until: *user.LockedUntil}
	}

	// Gate 6: expired lock is cleared lazily on this attempt
	if user.LockedUntil != nil {
		if err := s.users.ClearLock(user.ID); err != nil {
			return nil, err
		}
		user.LockedUntil = nil
	}

	// Gate 7: PIN verification
	if !VerifyPin(pin, user.PinHash) {
		until, err := s.lockout.RegisterFailure(user, now)
		if err != nil {
			return nil, err
		}

		s.auditLog.Log(models.ActionPinFailed, models.EntityUser, audit.ID(user.ID), nil, map[string]interface{}{
			"reason": "wrong_pin",
			"role":   user.Role,
			"ip":     clientIP,
		})

		// The attempt that trips the lock reports the lock, not a generic
		// credential failure.
		if until != nil {
			return nil, &LockedError{Until: *until}
		}
		return nil, ErrInvalidCredentials
	}

	// Gate 8: success
	if err := s.lockout.Reset(user); err != nil {
		return nil, err
	}

	token, session, err := s.sessions.Create(user.ID, s.cfg.SessionLifetime, now)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		return nil, err
	}

	s.auditLog.Log(models.ActionPinLogin, models.EntityUser, audit.ID(user.ID), audit.ID(user.ID), map[string]interface{}{
		"role": user.Role,
		"ip":   clientIP,
	})

	resp := &LoginResponse{
		Token:     token,
		User:      user,
		ExpiresAt: session.ExpiresAt,
	}

	if user.Role == models.RoleGuardian {
		children, err := s.users.ListActiveChildren()
		if err != nil {
			return nil, err
		}
		resp.Children = children
	}

	return resp, nil
}

// Logout deletes the session for the token, expired or not. Idempotent: a
// token that no longer resolves is a benign no-op, never an error.
func (s *Service) Logout(token string) error {
	session, err := s.sessions.FindByToken(token)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := s.sessions.DeleteByToken(token); err != nil && !errors.Is(err, database.ErrSessionNotFound) {
		return err
	}

	s.auditLog.Log(models.ActionLogout, models.EntitySession, audit.ID(session.ID), audit.ID(session.UserID), nil)
	return nil
}

// ValidateSession validates a token and slides its expiry forward. Every
// successful validation silently extends the session.
func (s *Service) ValidateSession(token string) (*models.User, *models.Session, error) {
	session, err := s.sessions.Validate(token, s.cfg.SessionLifetime, s.now().UTC())
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil, nil, ErrSessionInvalid
		}
		return nil, nil, err
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// ChangePin replaces a user's PIN after verifying the current one
func (s *Service) ChangePin(userID int64, currentPin, newPin string) error {
	if !ValidPin(newPin) {
		return ErrMalformedPin
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}

	if !ValidPin(currentPin) || !VerifyPin(currentPin, user.PinHash) {
		return ErrInvalidCurrentPin
	}

	hash, err := HashPin(newPin, s.cfg.PinHashCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePinHash(user.ID, hash); err != nil {
		return err
	}

	s.auditLog.Log(models.ActionPinChanged, models.EntityUser, audit.ID(user.ID), audit.ID(user.ID), nil)
	return nil
}

// SetPin replaces a user's PIN without a current-PIN check. The surrounding
// authorization layer must verify the actor is a guardian before calling.
func (s *Service) SetPin(userID int64, newPin string, actorID int64) error {
	if !ValidPin(newPin) {
		return ErrMalformedPin
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}

	hash, err := HashPin(newPin, s.cfg.PinHashCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePinHash(user.ID, hash); err != nil {
		return err
	}

	s.auditLog.Log(models.ActionPinSet, models.EntityUser, audit.ID(user.ID), audit.ID(actorID), nil)
	return nil
}

// UnlockWithCode clears a lock given the static emergency code AND the
// correct PIN. The code is an authenticated admin override, not a PIN
// substitute: a wrong PIN fails even with the right code.
func (s *Service) UnlockWithCode(userID int64, pin, unlockCode string) error {
	if s.cfg.UnlockCode == "" || unlockCode != s.cfg.UnlockCode {
		return ErrInvalidUnlockCode
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !ValidPin(pin) || !VerifyPin(pin, user.PinHash) {
		return ErrInvalidCredentials
	}

	if err := s.users.ClearLock(user.ID); err != nil {
		return err
	}
	if err := s.lockout.Reset(user); err != nil {
		return err
	}

	s.auditLog.Log(models.ActionUnlockCodeUsed, models.EntityUser, audit.ID(user.ID), audit.ID(user.ID), nil)
	s.auditLog.Log(models.ActionPinUnlocked, models.EntityUser, audit.ID(user.ID), audit.ID(user.ID), map[string]interface{}{
		"method": "unlock_code",
	})
	return nil
}

// LockUser places an administrative lock on an account. A guardian-initiated
// indefinite block is a very long lock (365 days) cleared only by UnlockUser.
func (s *Service) LockUser(userID int64, duration time.Duration, actorID int64) error {
	until := s.now().UTC().Add(duration)
	if err := s.users.SetLockedUntil(userID, until); err != nil {
		return err
	}

	s.auditLog.Log(models.ActionUserLocked, models.EntityUser, audit.ID(userID), audit.ID(actorID), map[string]interface{}{
		"locked_until": until.Format(time.RFC3339),
	})
	return nil
}

// UnlockUser clears any lock and the failure ledger for an account
func (s *Service) UnlockUser(userID int64, actorID int64) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}

	if err := s.users.ClearLock(user.ID); err != nil {
		return err
	}
	if err := s.lockout.Reset(user); err != nil {
		return err
	}

	s.auditLog.Log(models.ActionUserUnlocked, models.EntityUser, audit.ID(user.ID), audit.ID(actorID), nil)
	return nil
}
