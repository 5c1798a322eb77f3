package model

import "time"

// User represents an authentication user of the HTTP API.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles. Admins manage users, staff mutate inventory, viewers only read.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleViewer = "viewer"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// An unknown role on either side denies.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:  3,
		RoleStaff:  2,
		RoleViewer: 1,
	}
	have, ok := levels[role]
	if !ok {
		return false
	}
	want, ok := levels[minimum]
	if !ok {
		return false
	}
	return have >= want
}

// ValidRole reports whether role names a known role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff || role == RoleViewer
}

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return Invalid("password", "must be at least 8 characters")
	}
	return nil
}
