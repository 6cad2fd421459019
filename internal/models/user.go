package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleFaculty   Role = "faculty"
	RoleAnonymous Role = "anonymous"
)

// ParseRole maps an untrusted role string to a known role, defaulting to
// anonymous.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleFaculty:
		return RoleFaculty
	default:
		return RoleAnonymous
	}
}

type User struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         Role       `db:"role"`
	FacultyID    *uuid.UUID `db:"faculty_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
