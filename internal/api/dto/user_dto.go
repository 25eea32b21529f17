package dto

import (
	"time"

	"github.com/deskflow/helpdesk-api/internal/domain"
)

// UserResponse is the public view of an account. The password hash never leaves the service.
type UserResponse struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Name      *string         `json:"name"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewAuthResponse maps a signup/signin result.
func NewAuthResponse(payload *domain.AuthPayload) AuthResponse {
	return AuthResponse{
		Token:     payload.Token.Value,
		ExpiresAt: payload.Token.ExpiresAt,
		User:      NewUserResponse(payload.User),
	}
}
