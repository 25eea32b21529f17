package domain

import "time"

// UserRole is the coarse permission level of an account.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// User is the domain model for accounts that file and handle tickets.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         *string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the identity used for authorization decisions.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Actor is the authenticated caller, resolved once per request.
type Actor struct {
	ID   int64
	Role UserRole
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
