package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"famtrack-backend/internal/models"
)

var ErrGuestTokenNotFound = errors.New("guest token not found")

// GuestTokenRepo handles revocable read-only access tokens for clinicians
// and relatives.
type GuestTokenRepo struct {
	db *sql.DB
}

// NewGuestTokenRepo creates a new guest token repository
func NewGuestTokenRepo(db *sql.DB) *GuestTokenRepo {
	return &GuestTokenRepo{db: db}
}

// Create issues a new guest token and returns the plain token value.
// The plain value is only available at creation time.
func (r *GuestTokenRepo) Create(createdBy int64, label string, lifetime time.Duration, now time.Time) (string, *models.GuestToken, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, err
	}
	token := hex.EncodeToString(tokenBytes)

	gt := &models.GuestToken{
		ID:        uuid.NewString(),
		Token:     token,
		Label:     label,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}

	_, err := r.db.Exec(`
		INSERT INTO guest_tokens (id, token, label, created_by, created_at, expires_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, gt.ID, gt.Token, gt.Label, gt.CreatedBy, gt.CreatedAt, gt.ExpiresAt)
	if err != nil {
		return "", nil, err
	}

	return token, gt, nil
}

// GetByToken retrieves a usable guest token by its plain value.
// Revoked and expired tokens are reported as not found.
func (r *GuestTokenRepo) GetByToken(token string, now time.Time) (*models.GuestToken, error) {
	gt := &models.GuestToken{}

	err := r.db.QueryRow(`
		SELECT id, token, label, created_by, created_at, expires_at, revoked
		FROM guest_tokens WHERE token = ? AND revoked = 0 AND expires_at > ?
	`, token, now).Scan(
		&gt.ID, &gt.Token, &gt.Label, &gt.CreatedBy,
		&gt.CreatedAt, &gt.ExpiresAt, &gt.Revoked,
	)
	if err == sql.ErrNoRows {
		return nil, ErrGuestTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return gt, nil
}

// ListByCreator retrieves all guest tokens issued by a guardian
func (r *GuestTokenRepo) ListByCreator(createdBy int64) ([]*models.GuestToken, error) {
	rows, err := r.db.Query(`
		SELECT id, token, label, created_by, created_at, expires_at, revoked
		FROM guest_tokens WHERE created_by = ? ORDER BY created_at DESC
	`, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*models.GuestToken
	for rows.Next() {
		gt := &models.GuestToken{}
		err := rows.Scan(
			&gt.ID, &gt.Token, &gt.Label, &gt.CreatedBy,
			&gt.CreatedAt, &gt.ExpiresAt, &gt.Revoked,
		)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, gt)
	}

	return tokens, rows.Err()
}

// Revoke marks a guest token as revoked
func (r *GuestTokenRepo) Revoke(id string) error {
	result, err := r.db.Exec("UPDATE guest_tokens SET revoked = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrGuestTokenNotFound
	}

	return nil
}

// DeleteExpired removes guest tokens past their expiry
func (r *GuestTokenRepo) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM guest_tokens WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
