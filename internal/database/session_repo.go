package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"famtrack-backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// tokenCreateRetries bounds the retry loop on a token UNIQUE collision.
// Practically unreachable with 256-bit tokens, but a collision must be
// retried rather than surfaced.
const tokenCreateRetries = 3

// SessionRepo handles session database operations
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session and returns the plain token
func (r *SessionRepo) Create(userID int64, lifetime time.Duration, now time.Time) (string, *models.Session, error) {
	var lastErr error
	for i := 0; i < tokenCreateRetries; i++ {
		// Generate random token
		tokenBytes := make([]byte, 32)
		if _, err := rand.Read(tokenBytes); err != nil {
			return "", nil, err
		}
		token := hex.EncodeToString(tokenBytes)

		session := &models.Session{
			UserID:    userID,
			Token:     token,
			CreatedAt: now,
			ExpiresAt: now.Add(lifetime),
		}

		result, err := r.db.Exec(`
			INSERT INTO sessions (user_id, token, created_at, expires_at)
			VALUES (?, ?, ?, ?)
		`, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				lastErr = err
				continue
			}
			return "", nil, err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return "", nil, err
		}
		session.ID = id

		return token, session, nil
	}

	return "", nil, fmt.Errorf("failed to create session: %w", lastErr)
}

// GetByToken retrieves a session by token without extending it.
// Expired sessions are reported as not found.
func (r *SessionRepo) GetByToken(token string, now time.Time) (*models.Session, error) {
	session := &models.Session{}

	err := r.db.QueryRow(`
		SELECT id, user_id, token, created_at, expires_at
		FROM sessions WHERE token = ? AND expires_at > ?
	`, token, now).Scan(
		&session.ID, &session.UserID, &session.Token,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// FindByToken retrieves a session by token regardless of expiry. Used by
// logout, which must remove the row even when it has already expired.
func (r *SessionRepo) FindByToken(token string) (*models.Session, error) {
	session := &models.Session{}

	err := r.db.QueryRow(`
		SELECT id, user_id, token, created_at, expires_at
		FROM sessions WHERE token = ?
	`, token).Scan(
		&session.ID, &session.UserID, &session.Token,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Validate looks up an unexpired session by token and slides its expiry
// forward to now + lifetime. Every successful validation extends the session.
func (r *SessionRepo) Validate(token string, lifetime time.Duration, now time.Time) (*models.Session, error) {
	session, err := r.GetByToken(token, now)
	if err != nil {
		return nil, err
	}

	newExpiry := now.Add(lifetime)
	if _, err := r.db.Exec(
		"UPDATE sessions SET expires_at = ? WHERE id = ?", newExpiry, session.ID,
	); err != nil {
		return nil, err
	}
	session.ExpiresAt = newExpiry

	return session, nil
}

// DeleteByToken deletes a session by its token
func (r *SessionRepo) DeleteByToken(token string) error {
	result, err := r.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteAllForUser deletes all sessions for a user
func (r *SessionRepo) DeleteAllForUser(userID int64) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID)
	return err
}

// DeleteExpired removes all expired sessions
func (r *SessionRepo) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
