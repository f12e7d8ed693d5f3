package database

import (
	"database/sql"
	"time"
)

// RateLimitRepo persists fixed-window request counters keyed by
// (client IP, endpoint, window start). Windows are aligned to
// floor(now/window)*window, so a client straddling a boundary can send up to
// twice the limit in a short span; accepted behavior, not a bug.
type RateLimitRepo struct {
	db *sql.DB
}

// NewRateLimitRepo creates a new rate limit repository
func NewRateLimitRepo(db *sql.DB) *RateLimitRepo {
	return &RateLimitRepo{db: db}
}

// Hit records one request in the current fixed window and reports whether it
// was allowed. The increment is a single conditional upsert, so two
// concurrent requests at the limit cannot both slip through, and a counter at
// the limit is never incremented past it.
func (r *RateLimitRepo) Hit(ip, endpoint string, limit int, window time.Duration, now time.Time) (bool, error) {
	windowSeconds := int64(window.Seconds())
	windowStart := (now.Unix() / windowSeconds) * windowSeconds

	result, err := r.db.Exec(`
		INSERT INTO rate_limits (ip, endpoint, window_start, request_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (ip, endpoint, window_start)
		DO UPDATE SET request_count = request_count + 1
		WHERE request_count < ?
	`, ip, endpoint, windowStart, limit)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// Count returns the request count for the window containing now.
// Zero if no requests were recorded in the window.
func (r *RateLimitRepo) Count(ip, endpoint string, window time.Duration, now time.Time) (int, error) {
	windowSeconds := int64(window.Seconds())
	windowStart := (now.Unix() / windowSeconds) * windowSeconds

	var count int
	err := r.db.QueryRow(`
		SELECT request_count FROM rate_limits
		WHERE ip = ? AND endpoint = ? AND window_start = ?
	`, ip, endpoint, windowStart).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DeleteBefore removes counters for windows that started before the cutoff
func (r *RateLimitRepo) DeleteBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM rate_limits WHERE window_start < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
