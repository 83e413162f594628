package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/platform/logger"
	"github.com/phrazzld/signup/internal/result"
	"github.com/phrazzld/signup/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// UserService provides access to existing users: lookups, credential
// checks and account changes.
type UserService struct {
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
}

// UserServiceOption customizes a UserService.
type UserServiceOption func(*UserService)

// WithUserClock sets the time source used to stamp account changes.
func WithUserClock(now func() time.Time) UserServiceOption {
	return func(s *UserService) { s.now = now }
}

// NewUserService creates a new UserService
func NewUserService(users store.UserStore, log *slog.Logger, opts ...UserServiceOption) *UserService {
	if log == nil {
		log = slog.Default()
	}
	s := &UserService{
		users:  users,
		logger: log.With("component", "user_service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// unknownUserPassword is compared against when no account matches a login,
// so a miss costs one bcrypt comparison like a hit does.
var unknownUserPassword = sync.OnceValue(func() domain.Password {
	hash, err := domain.NewPassword("Unmatched#Placeholder1").Value().Hash(bcrypt.DefaultCost)
	if err != nil {
		return domain.Password{}
	}
	return domain.PasswordFromHash(hash, domain.StrengthWeak)
})

// GetUser retrieves a user by id. A missing user is a failed Result holding
// ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (result.Result[*domain.User, error], error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.FromContext(ctx).Debug("user not found", "user_id", id)
			return result.Fail[*domain.User, error](ErrUserNotFound), nil
		}
		s.logger.Error("failed to retrieve user",
			"error", err,
			"user_id", id)
		return result.Result[*domain.User, error]{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return result.Ok[*domain.User, error](user), nil
}

// Authenticate checks an email and password pair. Any malformed email,
// unknown account or wrong password yields ErrInvalidCredentials.
func (s *UserService) Authenticate(
	ctx context.Context,
	email, password string,
) (result.Result[*domain.User, error], error) {
	log := logger.FromContext(ctx)
	invalid := result.Fail[*domain.User, error](ErrInvalidCredentials)

	parsed := domain.NewEmail(email)
	if parsed.IsError() {
		unknownUserPassword().Matches(password)
		return invalid, nil
	}

	user, err := s.users.FindByEmail(ctx, parsed.Value())
	if err != nil {
		if store.IsNotFoundError(err) {
			unknownUserPassword().Matches(password)
			log.Debug("login attempt for unknown email")
			return invalid, nil
		}
		s.logger.Error("failed to retrieve user by email", "error", err)
		return result.Result[*domain.User, error]{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !user.Authenticate(password) {
		log.Debug("login attempt with wrong password", "user_id", user.ID)
		return invalid, nil
	}

	return result.Ok[*domain.User, error](user), nil
}

// ChangeEmail moves the user to a new address.
//
// The chain validates the address, loads the user, checks that no other
// account holds the address, then applies and stores the change. Business
// failures are a domain.ValidationError, ErrUserNotFound or ErrEmailExists.
// A store failure is returned as the error.
func (s *UserService) ChangeEmail(
	ctx context.Context,
	id uuid.UUID,
	newEmail string,
) (result.Result[*domain.User, error], error) {
	var infraErr error

	type change struct {
		user  *domain.User
		email domain.Email
	}

	loaded := result.FlatMap(
		result.AsError(domain.NewEmail(newEmail)),
		func(email domain.Email) result.Result[change, error] {
			return result.Map(s.load(ctx, id, &infraErr), func(user *domain.User) change {
				return change{user: user, email: email}
			})
		},
	)

	available := result.FlatMap(loaded, func(c change) result.Result[change, error] {
		owner, err := s.users.FindByEmail(ctx, c.email)
		switch {
		case err == nil && owner.ID != c.user.ID:
			return result.Fail[change, error](ErrEmailExists)
		case err == nil, store.IsNotFoundError(err):
			return result.Ok[change, error](c)
		default:
			infraErr = fmt.Errorf("failed to check email availability: %w", err)
			return result.Fail[change, error](infraErr)
		}
	})

	changed := result.Map(available, func(c change) *domain.User {
		c.user.ChangeEmail(c.email, s.now())
		return c.user
	})

	updated := result.FlatMap(changed, func(user *domain.User) result.Result[*domain.User, error] {
		return s.update(ctx, user, &infraErr)
	})

	if infraErr != nil {
		s.logger.Error("email change aborted by store failure", "error", infraErr, "user_id", id)
		return result.Result[*domain.User, error]{}, infraErr
	}

	return updated.Tap(func(user *domain.User) {
		logger.FromContext(ctx).Info("user email changed", "user_id", user.ID)
	}), nil
}

// ChangePassword replaces the user's password after checking the current
// one. A wrong current password is ErrInvalidCredentials; a new password
// that breaks the rules is a domain.ValidationError.
func (s *UserService) ChangePassword(
	ctx context.Context,
	id uuid.UUID,
	currentPassword, newPassword string,
) (result.Result[*domain.User, error], error) {
	var infraErr error

	type change struct {
		user     *domain.User
		password domain.Password
	}

	loaded := result.FlatMap(
		result.AsError(domain.NewPassword(newPassword)),
		func(password domain.Password) result.Result[change, error] {
			return result.Map(s.load(ctx, id, &infraErr), func(user *domain.User) change {
				return change{user: user, password: password}
			})
		},
	)

	verified := result.FlatMap(loaded, func(c change) result.Result[change, error] {
		if !c.user.Authenticate(currentPassword) {
			return result.Fail[change, error](ErrInvalidCredentials)
		}
		return result.Ok[change, error](c)
	})

	changed := result.Map(verified, func(c change) *domain.User {
		c.user.ChangePassword(c.password, s.now())
		return c.user
	})

	updated := result.FlatMap(changed, func(user *domain.User) result.Result[*domain.User, error] {
		return s.update(ctx, user, &infraErr)
	})

	if infraErr != nil {
		s.logger.Error("password change aborted by store failure", "error", infraErr, "user_id", id)
		return result.Result[*domain.User, error]{}, infraErr
	}

	return updated.Tap(func(user *domain.User) {
		logger.FromContext(ctx).Info("user password changed",
			"user_id", user.ID,
			"password_strength", user.Password.Strength())
	}), nil
}

// load is the lookup step shared by the change chains. Store failures are
// recorded in infraErr.
func (s *UserService) load(ctx context.Context, id uuid.UUID, infraErr *error) result.Result[*domain.User, error] {
	user, err := s.users.FindByID(ctx, id)
	switch {
	case err == nil:
		return result.Ok[*domain.User, error](user)
	case store.IsNotFoundError(err):
		return result.Fail[*domain.User, error](ErrUserNotFound)
	default:
		*infraErr = fmt.Errorf("failed to retrieve user: %w", err)
		return result.Fail[*domain.User, error](*infraErr)
	}
}

// update is the final step shared by the change chains.
func (s *UserService) update(ctx context.Context, user *domain.User, infraErr *error) result.Result[*domain.User, error] {
	err := s.users.Update(ctx, user)
	switch {
	case err == nil:
		return result.Ok[*domain.User, error](user)
	case errors.Is(err, store.ErrEmailExists):
		// Another account claimed the address after the availability check.
		return result.Fail[*domain.User, error](ErrEmailExists)
	case store.IsNotFoundError(err):
		return result.Fail[*domain.User, error](ErrUserNotFound)
	default:
		*infraErr = fmt.Errorf("failed to update user: %w", err)
		return result.Fail[*domain.User, error](*infraErr)
	}
}
