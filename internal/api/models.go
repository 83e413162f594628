package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
// Only the shape is checked here; the email and password rules live in the
// domain value objects.
type RegisterRequest struct {
	Email         string `json:"email"          validate:"required,max=1024"`
	Password      string `json:"password"       validate:"required,max=1024"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,max=1024"`
	Password string `json:"password" validate:"required,max=1024"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangeEmailRequest defines the payload for changing a user's email.
type ChangeEmailRequest struct {
	Email string `json:"email" validate:"required,max=1024"`
}

// ChangePasswordRequest defines the payload for changing a user's password.
// The current password is required so a stolen access token alone cannot
// take over the account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=1024"`
	NewPassword     string `json:"new_password"     validate:"required,max=1024"`
}

// UserResponse is the public view of a user. It never carries the password.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	AcceptedTerms bool      `json:"accepted_terms"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	User             UserResponse `json:"user"`
	Token            string       `json:"token"`
	ExpiresAt        string       `json:"expires_at"`
	RefreshToken     string       `json:"refresh_token"`
	RefreshExpiresAt string       `json:"refresh_expires_at"`
	PasswordStrength string       `json:"password_strength"`
}

// AuthResponse defines the successful response for the login and token
// refresh endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`

	// RefreshToken is exchanged at /api/auth/refresh for a new token pair
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresAt string `json:"refresh_expires_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email.String(),
		AcceptedTerms: u.AcceptedTerms,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func formatExpiry(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
