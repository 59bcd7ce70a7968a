package model

import "time"

const (
	RolePatient   = "patient"
	RoleCaretaker = "caretaker"
)

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsValidRole reports whether role is one of the known account roles
func IsValidRole(role string) bool {
	return role == RolePatient || role == RoleCaretaker
}
