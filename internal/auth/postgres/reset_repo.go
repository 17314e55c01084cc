// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/store"
)

// PasswordResetTokenRepository implements auth.PasswordResetTokenRepository
// using PostgreSQL.
type PasswordResetTokenRepository struct {
	db store.Querier
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository.
func NewPasswordResetTokenRepository(db store.Querier) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// Create stores a new password reset token.
func (r *PasswordResetTokenRepository) Create(ctx context.Context, token *auth.PasswordResetToken) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO password_reset_tokens (token_hash, account_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, token.TokenHash, token.AccountID.String(), token.ExpiresAt, token.CreatedAt)
	if store.IsForeignKeyViolation(err, "") {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("account_id", token.AccountID.String()).
			Wrap(auth.ErrAccountNotFound)
	}
	if err != nil {
		return oops.Code("RESET_CREATE_FAILED").
			With("operation", "insert password reset token").
			With("account_id", token.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// MarkUsed stamps used_at on an unused, unexpired token in a single
// statement and returns the token's account.
func (r *PasswordResetTokenRepository) MarkUsed(ctx context.Context, tokenHash string, now time.Time) (ulid.ULID, error) {
	var idStr string
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		UPDATE password_reset_tokens SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING account_id
	`, tokenHash, now).Scan(&idStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return ulid.ULID{}, oops.Code("TOKEN_NOT_REDEEMABLE").Wrap(auth.ErrTokenNotRedeemable)
	}
	if err != nil {
		return ulid.ULID{}, oops.Code("RESET_MARK_USED_FAILED").
			With("operation", "mark reset token used").
			Wrap(err)
	}
	return parseAccountID(idStr)
}

// DeleteExpired removes tokens that are expired or already used.
func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE expires_at <= $1 OR used_at IS NOT NULL
	`, now)
	if err != nil {
		return 0, oops.Code("RESET_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired reset tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.PasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)
