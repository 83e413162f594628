package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/signup/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{
			name:   "email unique violation",
			err:    &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailConstraint},
			wantIs: store.ErrEmailExists,
		},
		{
			name:   "other unique violation",
			err:    &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_pkey"},
			wantIs: store.ErrDuplicate,
		},
		{
			name:   "check violation",
			err:    &pgconn.PgError{Code: checkViolationCode, ConstraintName: "users_email_lowercase"},
			wantIs: store.ErrInvalidEntity,
		},
		{
			name:   "not null violation",
			err:    fmt.Errorf("exec: %w", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "email"}),
			wantIs: store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.err)
			if tc.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.wantIs)
		})
	}

	t.Run("unmapped error returned unchanged", func(t *testing.T) {
		original := errors.New("connection reset")
		assert.Same(t, original, MapError(original))
	})
}
