package database

import (
	"database/sql"
	"time"
)

// AttemptRepo is the failed-PIN-attempt ledger. It is separate from the audit
// log: the audit trail stays append-only while this table absorbs the
// write/delete churn of attempt counting.
type AttemptRepo struct {
	db *sql.DB
}

// NewAttemptRepo creates a new login attempt repository
func NewAttemptRepo(db *sql.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Record inserts a failed attempt and returns the total number of failures
// for the user within the window ending at now, including this one. Insert
// and count run in one transaction so concurrent failures cannot both observe
// the same pre-increment count.
func (r *AttemptRepo) Record(userID int64, window time.Duration, now time.Time) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO login_attempts (user_id, attempted_at) VALUES (?, ?)",
		userID, now,
	); err != nil {
		return 0, err
	}

	var count int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM login_attempts WHERE user_id = ? AND attempted_at > ?",
		userID, now.Add(-window),
	).Scan(&count); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return count, nil
}

// CountSince returns the number of failures for the user since the given instant
func (r *AttemptRepo) CountSince(userID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM login_attempts WHERE user_id = ? AND attempted_at > ?",
		userID, since,
	).Scan(&count)
	return count, err
}

// Reset deletes all recorded failures for the user. Called after a successful
// login or an explicit unlock.
func (r *AttemptRepo) Reset(userID int64) error {
	_, err := r.db.Exec("DELETE FROM login_attempts WHERE user_id = ?", userID)
	return err
}

// DeleteBefore removes attempts older than the cutoff
func (r *AttemptRepo) DeleteBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM login_attempts WHERE attempted_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
