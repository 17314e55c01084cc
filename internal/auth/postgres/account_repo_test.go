// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/store"
	"github.com/gamenight/gamenight/pkg/errutil"
)

var accountRowColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name",
	"role", "status", "email_verified_at", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestAccountRepository_Create(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	account := &auth.Account{
		ID:           ulid.Make(),
		Email:        "a@x.com",
		PasswordHash: "$argon2id$hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         auth.RoleMember,
		Status:       auth.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantKind  errutil.Kind
		wantErr   bool
	}{
		{
			name: "inserts the account",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(account.ID.String(), "a@x.com", "$argon2id$hash", "Ada", "Lovelace",
						"member", "active", account.EmailVerifiedAt, now, now).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate email is a conflict",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: store.ConstraintAccountEmail})
			},
			wantErr:  true,
			wantKind: errutil.KindConflict,
		},
		{
			name: "other database errors are wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			err := NewAccountRepository(mock).Create(context.Background(), account)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errutil.KindOf(err))
		})
	}
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	id := ulid.Make()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	verified := created.Add(time.Hour)

	t.Run("scans the row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM accounts\s+WHERE email = \$1`).
			WithArgs("a@x.com").
			WillReturnRows(pgxmock.NewRows(accountRowColumns).
				AddRow(id.String(), "a@x.com", "hash", "Ada", "Lovelace", "admin", "suspended", &verified, created, created))

		account, err := NewAccountRepository(mock).GetByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
		assert.Equal(t, auth.RoleAdmin, account.Role)
		assert.Equal(t, auth.StatusSuspended, account.Status)
		require.NotNil(t, account.EmailVerifiedAt)
		assert.True(t, verified.Equal(*account.EmailVerifiedAt))
		assert.Equal(t, "Ada Lovelace", account.DisplayName())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM accounts\s+WHERE email = \$1`).
			WithArgs("nobody@x.com").
			WillReturnRows(pgxmock.NewRows(accountRowColumns))

		_, err := NewAccountRepository(mock).GetByEmail(context.Background(), "nobody@x.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, errutil.ErrNotFound)
		errutil.AssertErrorCode(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("corrupt id fails the scan", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM accounts\s+WHERE email = \$1`).
			WithArgs("a@x.com").
			WillReturnRows(pgxmock.NewRows(accountRowColumns).
				AddRow("not-a-ulid", "a@x.com", "hash", "Ada", "Lovelace", "member", "active", nil, created, created))

		_, err := NewAccountRepository(mock).GetByEmail(context.Background(), "a@x.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, errutil.ErrNotFound)
	})
}

func TestAccountRepository_List(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first, second := ulid.Make(), ulid.Make()

	mock := newMock(t)
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows(accountRowColumns).
			AddRow(second.String(), "b@x.com", "hash", "B", "Two", "member", "active", nil, created.Add(time.Minute), created).
			AddRow(first.String(), "a@x.com", "hash", "A", "One", "admin", "active", nil, created, created))

	accounts, err := NewAccountRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, second, accounts[0].ID)
	assert.Equal(t, first, accounts[1].ID)
	assert.Nil(t, accounts[0].EmailVerifiedAt)
}

func TestAccountRepository_Updates(t *testing.T) {
	id := ulid.Make()

	tests := []struct {
		name     string
		call     func(r *AccountRepository) error
		sql      string
		args     []any
		result   pgconn.CommandTag
		dbErr    error
		wantKind errutil.Kind
		wantErr  bool
	}{
		{
			name:   "update profile",
			call:   func(r *AccountRepository) error { return r.UpdateProfile(context.Background(), id, "Ada", "L") },
			sql:    `UPDATE accounts SET first_name = \$2, last_name = \$3`,
			args:   []any{id.String(), "Ada", "L"},
			result: pgxmock.NewResult("UPDATE", 1),
		},
		{
			name:     "update profile of a missing account",
			call:     func(r *AccountRepository) error { return r.UpdateProfile(context.Background(), id, "Ada", "L") },
			sql:      `UPDATE accounts SET first_name`,
			args:     []any{id.String(), "Ada", "L"},
			result:   pgxmock.NewResult("UPDATE", 0),
			wantErr:  true,
			wantKind: errutil.KindNotFound,
		},
		{
			name:   "update email clears verification",
			call:   func(r *AccountRepository) error { return r.UpdateEmail(context.Background(), id, "new@x.com") },
			sql:    `SET email = \$2, email_verified_at = NULL`,
			args:   []any{id.String(), "new@x.com"},
			result: pgxmock.NewResult("UPDATE", 1),
		},
		{
			name:     "update email to a taken address",
			call:     func(r *AccountRepository) error { return r.UpdateEmail(context.Background(), id, "b@x.com") },
			sql:      `SET email = \$2`,
			args:     []any{id.String(), "b@x.com"},
			dbErr:    &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: store.ConstraintAccountEmail},
			wantErr:  true,
			wantKind: errutil.KindConflict,
		},
		{
			name: "update admin fields",
			call: func(r *AccountRepository) error {
				return r.UpdateAdmin(context.Background(), id, "A", "B", auth.RoleAdmin, auth.StatusSuspended)
			},
			sql:    `role = \$4, status = \$5`,
			args:   []any{id.String(), "A", "B", "admin", "suspended"},
			result: pgxmock.NewResult("UPDATE", 1),
		},
		{
			name:   "update password",
			call:   func(r *AccountRepository) error { return r.UpdatePassword(context.Background(), id, "newhash") },
			sql:    `SET password_hash = \$2`,
			args:   []any{id.String(), "newhash"},
			result: pgxmock.NewResult("UPDATE", 1),
		},
		{
			name:   "delete",
			call:   func(r *AccountRepository) error { return r.Delete(context.Background(), id) },
			sql:    `DELETE FROM accounts WHERE id = \$1`,
			args:   []any{id.String()},
			result: pgxmock.NewResult("DELETE", 1),
		},
		{
			name:     "delete twice",
			call:     func(r *AccountRepository) error { return r.Delete(context.Background(), id) },
			sql:      `DELETE FROM accounts`,
			args:     []any{id.String()},
			result:   pgxmock.NewResult("DELETE", 0),
			wantErr:  true,
			wantKind: errutil.KindNotFound,
		},
		{
			name:    "database error",
			call:    func(r *AccountRepository) error { return r.Delete(context.Background(), id) },
			sql:     `DELETE FROM accounts`,
			args:    []any{id.String()},
			dbErr:   errors.New("connection reset"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectExec(tt.sql).WithArgs(tt.args...)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := tt.call(NewAccountRepository(mock))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errutil.KindOf(err))
		})
	}
}

func TestAccountRepository_MarkEmailVerified(t *testing.T) {
	id := ulid.Make()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectExec(`SET email_verified_at = \$2`).
		WithArgs(id.String(), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewAccountRepository(mock).MarkEmailVerified(context.Background(), id, at))
}

func TestAccountRepository_JoinsContextTransaction(t *testing.T) {
	id := ulid.Make()

	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM accounts`).
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	repo := NewAccountRepository(mock)
	err := store.NewTransactor(mock).InTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Delete(ctx, id)
	})
	require.NoError(t, err)
}
