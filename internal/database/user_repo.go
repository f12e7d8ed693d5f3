package database

import (
	"database/sql"
	"errors"
	"time"

	"famtrack-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepo handles user database operations
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create creates a new user
func (r *UserRepo) Create(user *models.User) error {
	result, err := r.db.Exec(`
		INSERT INTO users (role, name, pin_hash, locale, active)
		VALUES (?, ?, ?, ?, ?)
	`, user.Role, user.Name, user.PinHash, user.Locale, user.Active)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

const userColumns = `id, role, name, pin_hash, locale, locked_until, active, created_at, updated_at, last_login`

func (r *UserRepo) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var lockedUntil, lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Role, &user.Name, &user.PinHash, &user.Locale,
		&lockedUntil, &user.Active, &user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if lockedUntil.Valid {
		t := lockedUntil.Time
		user.LockedUntil = &t
	}
	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id int64) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
}

// GetByIDAndRole retrieves a user by ID and role. Role is part of the lookup
// key so a child ID presented with the guardian role does not resolve.
func (r *UserRepo) GetByIDAndRole(id int64, role models.Role) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ? AND role = ?`, id, role,
	))
}

// ListActiveChildren retrieves all active child accounts
func (r *UserRepo) ListActiveChildren() ([]*models.User, error) {
	rows, err := r.db.Query(
		`SELECT `+userColumns+` FROM users WHERE role = ? AND active = 1 ORDER BY name`,
		models.RoleChild,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var lockedUntil, lastLogin sql.NullTime

		err := rows.Scan(
			&user.ID, &user.Role, &user.Name, &user.PinHash, &user.Locale,
			&lockedUntil, &user.Active, &user.CreatedAt, &user.UpdatedAt, &lastLogin,
		)
		if err != nil {
			return nil, err
		}

		if lockedUntil.Valid {
			t := lockedUntil.Time
			user.LockedUntil = &t
		}
		if lastLogin.Valid {
			user.LastLogin = lastLogin.Time
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdatePinHash replaces the user's PIN hash. A single-row write; the store's
// atomicity guarantee covers the no-partial-hash requirement.
func (r *UserRepo) UpdatePinHash(id int64, pinHash string) error {
	result, err := r.db.Exec(
		"UPDATE users SET pin_hash = ?, updated_at = ? WHERE id = ?",
		pinHash, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetLockedUntil sets the account lock expiry
func (r *UserRepo) SetLockedUntil(id int64, until time.Time) error {
	result, err := r.db.Exec(
		"UPDATE users SET locked_until = ?, updated_at = ? WHERE id = ?",
		until, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ClearLock removes the account lock
func (r *UserRepo) ClearLock(id int64) error {
	_, err := r.db.Exec(
		"UPDATE users SET locked_until = NULL, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	return err
}

// UpdateLastLogin updates the user's last login timestamp
func (r *UserRepo) UpdateLastLogin(id int64) error {
	_, err := r.db.Exec("UPDATE users SET last_login = ? WHERE id = ?", time.Now().UTC(), id)
	return err
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
