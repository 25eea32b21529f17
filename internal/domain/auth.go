package domain

import "time"

// Token represents an issued access token and its metadata.
type Token struct {
	Value     string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthPayload is returned by signup and signin.
type AuthPayload struct {
	Token Token
	User  *User
}
