package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/events"
	"github.com/phrazzld/signup/internal/platform/logger"
	"github.com/phrazzld/signup/internal/result"
	"github.com/phrazzld/signup/internal/store"
)

// RegisterCommand is the raw, unvalidated registration input.
type RegisterCommand struct {
	Email         string
	Password      string
	AcceptedTerms bool
}

// RegistrationService registers new users.
type RegistrationService struct {
	users   store.UserStore
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
	newID   func() uuid.UUID
}

// RegistrationOption customizes a RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) RegistrationOption {
	return func(s *RegistrationService) { s.now = now }
}

// WithIDGenerator sets the function that assigns user ids.
func WithIDGenerator(newID func() uuid.UUID) RegistrationOption {
	return func(s *RegistrationService) { s.newID = newID }
}

// NewRegistrationService creates a RegistrationService. The emitter may be nil.
func NewRegistrationService(
	users store.UserStore,
	emitter events.EventEmitter,
	log *slog.Logger,
	opts ...RegistrationOption,
) *RegistrationService {
	if log == nil {
		log = slog.Default()
	}
	s := &RegistrationService{
		users:   users,
		emitter: emitter,
		logger:  log.With("component", "registration_service"),
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// credentials pairs the two validated value objects moving down the chain.
type credentials struct {
	email    domain.Email
	password domain.Password
}

// Register validates cmd and persists a new user.
//
// Steps run in order: validate email, validate password, check the email is
// free, check terms acceptance, build the user, save it. The first failing
// step ends the chain and later steps never run. Business failures come back
// as a failed Result holding a domain.ValidationError, ErrEmailExists or
// ErrTermsNotAccepted. A store failure is returned as the error.
func (s *RegistrationService) Register(
	ctx context.Context,
	cmd RegisterCommand,
) (result.Result[*domain.User, error], error) {
	log := logger.FromContext(ctx)
	var infraErr error

	validated := result.FlatMap(
		result.AsError(domain.NewEmail(cmd.Email)),
		func(email domain.Email) result.Result[credentials, error] {
			return result.Map(
				result.AsError(domain.NewPassword(cmd.Password)),
				func(password domain.Password) credentials {
					return credentials{email: email, password: password}
				},
			)
		},
	)

	unique := result.FlatMap(validated, func(c credentials) result.Result[credentials, error] {
		_, err := s.users.FindByEmail(ctx, c.email)
		switch {
		case err == nil:
			return result.Fail[credentials, error](ErrEmailExists)
		case store.IsNotFoundError(err):
			return result.Ok[credentials, error](c)
		default:
			infraErr = fmt.Errorf("failed to check email availability: %w", err)
			return result.Fail[credentials, error](infraErr)
		}
	})

	accepted := result.FlatMap(unique, func(c credentials) result.Result[credentials, error] {
		if !cmd.AcceptedTerms {
			return result.Fail[credentials, error](ErrTermsNotAccepted)
		}
		return result.Ok[credentials, error](c)
	})

	built := result.Map(accepted, func(c credentials) *domain.User {
		return domain.NewUser(s.newID(), c.email, c.password, true, s.now())
	})

	saved := result.FlatMap(built, func(user *domain.User) result.Result[*domain.User, error] {
		err := s.users.Save(ctx, user)
		switch {
		case err == nil:
			return result.Ok[*domain.User, error](user)
		case errors.Is(err, store.ErrEmailExists):
			// Lost a race with a concurrent registration for the same email.
			return result.Fail[*domain.User, error](ErrEmailExists)
		default:
			infraErr = fmt.Errorf("failed to save user: %w", err)
			return result.Fail[*domain.User, error](infraErr)
		}
	})

	if infraErr != nil {
		log.Error("registration aborted by store failure", "error", infraErr)
		return result.Result[*domain.User, error]{}, infraErr
	}

	return saved.Tap(func(user *domain.User) {
		log.Info("user registered",
			"user_id", user.ID,
			"password_strength", user.Password.Strength())
		s.emitRegistered(ctx, user)
	}), nil
}

// emitRegistered publishes UserRegistered. Failures are logged only; the
// user is already persisted.
func (s *RegistrationService) emitRegistered(ctx context.Context, user *domain.User) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewUserRegisteredEvent(user.ID, user.Email.String(), user.CreatedAt)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		s.logger.Warn("failed to emit user registered event",
			"error", err,
			"user_id", user.ID)
	}
}
