package models

import "time"

// AuditEntry is an append-only record of a security-relevant action.
// Entries are never mutated or deleted.
type AuditEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   *int64    `json:"entity_id,omitempty"`
	ActorID    *int64    `json:"actor_id,omitempty"` // nil for unauthenticated failures
	Details    string    `json:"details,omitempty"`  // opaque JSON payload
}

// Audit actions
const (
	ActionPinLogin       = "PIN_LOGIN"
	ActionPinFailed      = "PIN_FAILED"
	ActionPinLocked      = "PIN_LOCKED"
	ActionPinUnlocked    = "PIN_UNLOCKED"
	ActionPinChanged     = "PIN_CHANGED"
	ActionPinSet         = "PIN_SET"
	ActionLogout         = "LOGOUT"
	ActionUnlockCodeUsed = "UNLOCK_CODE_USED"
	ActionRateLimited    = "RATE_LIMITED"
	ActionUserLocked     = "USER_LOCKED"
	ActionUserUnlocked   = "USER_UNLOCKED"
	ActionTokenCreated   = "TOKEN_CREATED"
	ActionTokenRevoked   = "TOKEN_REVOKED"
	ActionTokenUsed      = "TOKEN_USED"
)

// Entity types referenced by audit entries
const (
	EntityUser       = "user"
	EntitySession    = "session"
	EntityGuestToken = "guest_token"
)

// AuditFilter describes optional filters for listing audit entries
type AuditFilter struct {
	ActorID      *int64
	Action       string
	ActionPrefix string
	StartTime    time.Time
	EndTime      time.Time
	Limit        int
	Offset       int
}
