package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole enumerates the staff and guardian roles known to the system.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleTeacher     UserRole = "TEACHER"
	RoleSecretary   UserRole = "SECRETARY"
	RoleBursar      UserRole = "BURSAR"
	RoleHeadteacher UserRole = "HEADTEACHER"
	RoleParent      UserRole = "PARENT"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleSecretary, RoleBursar, RoleHeadteacher, RoleParent:
		return true
	}
	return false
}

// User is a staff or guardian account. Placeholder accounts are auto-created
// stand-ins (e.g. unfilled teacher posts) and are excluded from timetable
// generation.
type User struct {
	ID           int64     `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Placeholder  bool      `db:"placeholder" json:"placeholder"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims is the token payload issued at login.
type JWTClaims struct {
	UserID int64    `json:"uid"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
