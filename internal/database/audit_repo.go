package database

import (
	"database/sql"
	"time"

	"famtrack-backend/internal/models"
)

// AuditRepo handles audit log database operations. The table is append-only:
// there are no update or delete operations.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new audit repository
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends a new audit entry
func (r *AuditRepo) Insert(entry *models.AuditEntry) error {
	result, err := r.db.Exec(`
		INSERT INTO audit_log (timestamp, action, entity_type, entity_id, actor_id, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Timestamp, entry.Action, entry.EntityType, entry.EntityID, entry.ActorID, entry.Details)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// List retrieves audit entries with pagination and optional filters
func (r *AuditRepo) List(filter models.AuditFilter) ([]*models.AuditEntry, int, error) {
	// Build query
	baseQuery := "FROM audit_log WHERE 1=1"
	args := []interface{}{}

	if filter.ActorID != nil {
		baseQuery += " AND actor_id = ?"
		args = append(args, *filter.ActorID)
	}
	if filter.Action != "" {
		baseQuery += " AND action = ?"
		args = append(args, filter.Action)
	}
	if filter.ActionPrefix != "" {
		baseQuery += " AND action LIKE ?"
		args = append(args, filter.ActionPrefix+"%")
	}
	if !filter.StartTime.IsZero() {
		baseQuery += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		baseQuery += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	// Get total count
	var total int
	countQuery := "SELECT COUNT(*) " + baseQuery
	err := r.db.QueryRow(countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Get paginated results
	query := "SELECT id, timestamp, action, entity_type, entity_id, actor_id, details " + baseQuery
	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET; -1 means no limit
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		var entityType, details sql.NullString
		var entityID, actorID sql.NullInt64

		err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.Action,
			&entityType, &entityID, &actorID, &details,
		)
		if err != nil {
			return nil, 0, err
		}

		if entityType.Valid {
			entry.EntityType = entityType.String
		}
		if entityID.Valid {
			v := entityID.Int64
			entry.EntityID = &v
		}
		if actorID.Valid {
			v := actorID.Int64
			entry.ActorID = &v
		}
		if details.Valid {
			entry.Details = details.String
		}

		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}

// GetActions returns a list of unique actions in the audit log
func (r *AuditRepo) GetActions() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT action FROM audit_log ORDER BY action")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return actions, rows.Err()
}

// CountByActionSince returns the number of entries for an action since the
// given instant. Used by tests and the audit stats endpoint.
func (r *AuditRepo) CountByActionSince(action string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM audit_log WHERE action = ? AND timestamp >= ?",
		action, since,
	).Scan(&count)
	return count, err
}
