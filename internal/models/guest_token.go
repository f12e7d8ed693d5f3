package models

import "time"

// GuestToken grants read-only report access to a clinician or relative
// without a PIN login. Longer-lived than a session and explicitly revocable.
type GuestToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"` // Never expose in JSON after creation
	Label     string    `json:"label"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// Usable returns true if the token can still be used at the given instant
func (t *GuestToken) Usable(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
