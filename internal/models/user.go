package models

import "time"

// Role represents the kind of family member an account belongs to
type Role string

const (
	RoleGuardian Role = "guardian"
	RoleChild    Role = "child"
)

// Valid returns true if the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleGuardian || r == RoleChild
}

// Lockable returns true if failed PIN attempts can lock accounts of this role.
// Child accounts share a small PIN space and are never locked; a lockout there
// creates more household support burden than it prevents.
func (r Role) Lockable() bool {
	return r == RoleGuardian
}

// User represents a family member with a PIN credential
type User struct {
	ID          int64      `json:"id"`
	Role        Role       `json:"role"`
	Name        string     `json:"name"`
	PinHash     string     `json:"-"` // Never expose in JSON
	Locale      string     `json:"locale"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   time.Time  `json:"last_login,omitempty"`
}

// Locked returns true if the account is locked at the given instant
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
