package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the aggregate root for a registered account.
// It is assembled only from already-validated value objects, so building
// one cannot fail.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         Email     `json:"email"`
	Password      Password  `json:"-"` // Never expose the password or its digest
	AcceptedTerms bool      `json:"accepted_terms"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser creates a User from validated parts. Timestamps are set to now in UTC.
func NewUser(id uuid.UUID, email Email, password Password, acceptedTerms bool, now time.Time) *User {
	now = now.UTC()
	return &User{
		ID:            id,
		Email:         email,
		Password:      password,
		AcceptedTerms: acceptedTerms,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ChangeEmail replaces the address.
func (u *User) ChangeEmail(email Email, now time.Time) {
	u.Email = email
	u.UpdatedAt = now.UTC()
}

// ChangePassword replaces the password.
func (u *User) ChangePassword(password Password, now time.Time) {
	u.Password = password
	u.UpdatedAt = now.UTC()
}

// Authenticate reports whether plaintext is the user's password.
func (u *User) Authenticate(plaintext string) bool {
	return u.Password.Matches(plaintext)
}
