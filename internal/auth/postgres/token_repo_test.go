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
	"github.com/gamenight/gamenight/pkg/errutil"
)

func TestVerificationTokenRepository_Create(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := &auth.VerificationToken{
		TokenHash: "abc",
		AccountID: ulid.Make(),
		ExpiresAt: now.Add(auth.VerificationTokenTTL),
		CreatedAt: now,
	}

	t.Run("inserts the hash", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO verification_tokens`).
			WithArgs("abc", token.AccountID.String(), token.ExpiresAt, now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewVerificationTokenRepository(mock).Create(context.Background(), token))
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO verification_tokens`).
			WithArgs("abc", token.AccountID.String(), token.ExpiresAt, now).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

		err := NewVerificationTokenRepository(mock).Create(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	})
}

func TestVerificationTokenRepository_Consume(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	accountID := ulid.Make()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    ulid.ULID
		wantKind  errutil.Kind
		wantErr   bool
	}{
		{
			name: "returns the account of the deleted row",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`DELETE FROM verification_tokens\s+WHERE token_hash = \$1 AND expires_at > \$2\s+RETURNING account_id`).
					WithArgs("abc", now).
					WillReturnRows(pgxmock.NewRows([]string{"account_id"}).AddRow(accountID.String()))
			},
			wantID: accountID,
		},
		{
			name: "no row means the token is not redeemable",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`DELETE FROM verification_tokens`).
					WithArgs("abc", now).
					WillReturnRows(pgxmock.NewRows([]string{"account_id"}))
			},
			wantErr:  true,
			wantKind: errutil.KindTokenInvalid,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`DELETE FROM verification_tokens`).
					WithArgs("abc", now).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			id, err := NewVerificationTokenRepository(mock).Consume(context.Background(), "abc", now)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errutil.KindOf(err))
		})
	}
}

func TestVerificationTokenRepository_DeleteExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM verification_tokens WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewVerificationTokenRepository(mock).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPasswordResetTokenRepository_MarkUsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	accountID := ulid.Make()

	t.Run("marks an unused token", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE password_reset_tokens SET used_at = \$2\s+WHERE token_hash = \$1 AND used_at IS NULL AND expires_at > \$2`).
			WithArgs("abc", now).
			WillReturnRows(pgxmock.NewRows([]string{"account_id"}).AddRow(accountID.String()))

		id, err := NewPasswordResetTokenRepository(mock).MarkUsed(context.Background(), "abc", now)
		require.NoError(t, err)
		assert.Equal(t, accountID, id)
	})

	t.Run("used, expired and unknown tokens look the same", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE password_reset_tokens`).
			WithArgs("abc", now).
			WillReturnRows(pgxmock.NewRows([]string{"account_id"}))

		_, err := NewPasswordResetTokenRepository(mock).MarkUsed(context.Background(), "abc", now)
		require.Error(t, err)
		assert.ErrorIs(t, err, errutil.ErrTokenInvalid)
		assert.Equal(t, "Invalid or expired token", err.Error())
	})
}

func TestPasswordResetTokenRepository_Create(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := &auth.PasswordResetToken{
		TokenHash: "abc",
		AccountID: ulid.Make(),
		ExpiresAt: now.Add(auth.ResetTokenTTL),
		CreatedAt: now,
	}

	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO password_reset_tokens`).
		WithArgs("abc", token.AccountID.String(), token.ExpiresAt, now).
		WillReturnError(errors.New("disk full"))

	err := NewPasswordResetTokenRepository(mock).Create(context.Background(), token)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "RESET_CREATE_FAILED")
}

func TestPasswordResetTokenRepository_DeleteExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectExec(`WHERE expires_at <= \$1 OR used_at IS NOT NULL`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := NewPasswordResetTokenRepository(mock).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
