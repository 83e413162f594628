package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Save stores a new user.
	// Returns ErrEmailExists if another user already holds the email.
	Save(ctx context.Context, user *domain.User) error

	// FindByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// FindByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error)

	// Update overwrites the stored state of an existing user. The id and
	// creation time are never changed.
	// Returns ErrUserNotFound if the user does not exist, or ErrEmailExists
	// if another user already holds the new email.
	Update(ctx context.Context, user *domain.User) error
}

// ValidateUser rejects a user whose value objects were never constructed.
// Stores call it before writing.
func ValidateUser(user *domain.User, operation string) error {
	switch {
	case user == nil:
		return NewStoreError("user", operation, "user is nil", ErrInvalidEntity)
	case user.Email.IsZero():
		return NewStoreError("user", operation, "email is missing", ErrInvalidEntity)
	case user.Password.IsZero():
		return NewStoreError("user", operation, "password is missing", ErrInvalidEntity)
	}
	return nil
}
