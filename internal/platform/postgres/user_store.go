package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
// A bcrypt cost outside bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With("component", "user_store"),
	}
}

const insertUserQuery = `
	INSERT INTO users (id, email, password_hash, password_strength, accepted_terms, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectUserColumns = `
	SELECT id, email, password_hash, password_strength, accepted_terms, created_at, updated_at
	FROM users`

const updateUserQuery = `
	UPDATE users
	SET email = $2, password_hash = $3, password_strength = $4, accepted_terms = $5, updated_at = $6
	WHERE id = $1`

// Save implements store.UserStore.Save
func (s *PostgresUserStore) Save(ctx context.Context, user *domain.User) error {
	if err := store.ValidateUser(user, "save"); err != nil {
		return err
	}

	hash, err := user.Password.Hash(s.bcryptCost)
	if err != nil {
		return store.NewStoreError("user", "save", "failed to hash password", err)
	}

	_, err = s.db.ExecContext(ctx, insertUserQuery,
		user.ID,
		user.Email.String(),
		hash,
		string(user.Password.Strength()),
		user.AcceptedTerms,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrEmailExists) {
			s.logger.Debug("email already registered", "user_id", user.ID)
			return mapped
		}
		s.logger.Error("failed to insert user", "error", err, "user_id", user.ID)
		return store.NewStoreError("user", "save", "insert failed", mapped)
	}

	s.logger.Debug("user inserted", "user_id", user.ID)
	return nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := store.ValidateUser(user, "update"); err != nil {
		return err
	}

	hash, err := user.Password.Hash(s.bcryptCost)
	if err != nil {
		return store.NewStoreError("user", "update", "failed to hash password", err)
	}

	res, err := s.db.ExecContext(ctx, updateUserQuery,
		user.ID,
		user.Email.String(),
		hash,
		string(user.Password.Strength()),
		user.AcceptedTerms,
		user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			s.logger.Debug("email already registered to another user", "user_id", user.ID)
			return mapped
		}
		s.logger.Error("failed to update user", "error", err, "user_id", user.ID)
		return store.NewStoreError("user", "update", "update failed", mapped)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return store.NewStoreError("user", "update", "failed to read affected rows", err)
	}
	if rows == 0 {
		return store.ErrUserNotFound
	}

	s.logger.Debug("user updated", "user_id", user.ID)
	return nil
}

// FindByID implements store.UserStore.FindByID
func (s *PostgresUserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, selectUserColumns+" WHERE id = $1", id)
	return s.scanUser(row, "find by id")
}

// FindByEmail implements store.UserStore.FindByEmail
func (s *PostgresUserStore) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, selectUserColumns+" WHERE email = $1", email.String())
	return s.scanUser(row, "find by email")
}

func (s *PostgresUserStore) scanUser(row *sql.Row, operation string) (*domain.User, error) {
	var (
		id            uuid.UUID
		rawEmail      string
		hash          []byte
		strength      string
		acceptedTerms bool
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(&id, &rawEmail, &hash, &strength, &acceptedTerms, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		s.logger.Error("failed to scan user row", "error", err, "operation", operation)
		return nil, store.NewStoreError("user", operation, "query failed", MapError(err))
	}

	// Rows are written only by Save, so a failure here means the table was
	// edited out of band.
	email := domain.NewEmail(rawEmail)
	if email.IsError() {
		return nil, store.NewStoreError("user", operation,
			fmt.Sprintf("stored email is invalid: %s", email.Err().Reason), store.ErrInvalidEntity)
	}

	return &domain.User{
		ID:            id,
		Email:         email.Value(),
		Password:      domain.PasswordFromHash(hash, domain.ParsePasswordStrength(strength)),
		AcceptedTerms: acceptedTerms,
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     updatedAt.UTC(),
	}, nil
}
