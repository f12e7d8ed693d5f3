package models

import "time"

// Session represents an authenticated login session.
// The token is 256 bits of randomness, hex-encoded, and is the exact-match
// lookup key for validation.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
