// Package audit provides best-effort security event logging. Writes never
// propagate failures into the caller's operation: a login must not fail
// because the audit row could not be written.
package audit

import (
	"encoding/json"
	"log"
	"time"

	"famtrack-backend/internal/database"
	"famtrack-backend/internal/models"
)

// Logger appends audit entries through the audit repository.
// When disabled, all calls are no-ops.
type Logger struct {
	repo    *database.AuditRepo
	enabled bool
}

// NewLogger creates a new audit logger
func NewLogger(repo *database.AuditRepo, enabled bool) *Logger {
	return &Logger{repo: repo, enabled: enabled}
}

// Enabled returns true if audit logging is active
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Log appends a security event. The details payload is serialized to JSON and
// treated as opaque. Store errors are reported to the process log and
// swallowed.
func (l *Logger) Log(action, entityType string, entityID, actorID *int64, details interface{}) {
	if !l.Enabled() {
		return
	}

	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(b)
		}
	}

	entry := &models.AuditEntry{
		Timestamp:  time.Now().UTC(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Details:    detailsJSON,
	}

	if err := l.repo.Insert(entry); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}

// ID wraps an int64 for the nullable entity/actor columns
func ID(v int64) *int64 {
	return &v
}
