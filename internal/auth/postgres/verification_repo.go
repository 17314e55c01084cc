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

// VerificationTokenRepository implements auth.VerificationTokenRepository
// using PostgreSQL.
type VerificationTokenRepository struct {
	db store.Querier
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository.
func NewVerificationTokenRepository(db store.Querier) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

// Create stores a new verification token.
func (r *VerificationTokenRepository) Create(ctx context.Context, token *auth.VerificationToken) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO verification_tokens (token_hash, account_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, token.TokenHash, token.AccountID.String(), token.ExpiresAt, token.CreatedAt)
	if store.IsForeignKeyViolation(err, "") {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("account_id", token.AccountID.String()).
			Wrap(auth.ErrAccountNotFound)
	}
	if err != nil {
		return oops.Code("VERIFICATION_CREATE_FAILED").
			With("operation", "insert verification token").
			With("account_id", token.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// Consume deletes the unexpired token in a single statement. Of two
// concurrent calls for the same hash only one sees the row.
func (r *VerificationTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (ulid.ULID, error) {
	var idStr string
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		DELETE FROM verification_tokens
		WHERE token_hash = $1 AND expires_at > $2
		RETURNING account_id
	`, tokenHash, now).Scan(&idStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return ulid.ULID{}, oops.Code("TOKEN_NOT_REDEEMABLE").Wrap(auth.ErrTokenNotRedeemable)
	}
	if err != nil {
		return ulid.ULID{}, oops.Code("VERIFICATION_CONSUME_FAILED").
			With("operation", "delete verification token").
			Wrap(err)
	}
	return parseAccountID(idStr)
}

// DeleteExpired removes tokens that expired at or before now.
func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM verification_tokens WHERE expires_at <= $1
	`, now)
	if err != nil {
		return 0, oops.Code("VERIFICATION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired verification tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

func parseAccountID(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", s).
			Wrap(err)
	}
	return id, nil
}

// Compile-time interface check.
var _ auth.VerificationTokenRepository = (*VerificationTokenRepository)(nil)
