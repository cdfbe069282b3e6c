package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleCoach UserRole = "coach"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	Role         UserRole  `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Actor is the authenticated caller of a service operation.
// The zero value is an anonymous caller without privileges.
type Actor struct {
	UserID int
	Role   UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID > 0
}
