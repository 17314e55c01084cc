// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token configuration.
const (
	TokenBytes           = 32 // 64 hex chars
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

// Token purposes, used as metric labels.
const (
	PurposeVerification = "verification"
	PurposeReset        = "password_reset"
)

// VerificationToken proves control of an email address. It is deleted when
// redeemed.
type VerificationToken struct {
	TokenHash string
	AccountID ulid.ULID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordResetToken authorizes one password change. It is marked used, not
// deleted, when redeemed.
type PasswordResetToken struct {
	TokenHash string
	AccountID ulid.ULID
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// GenerateToken creates a random token and its sha256 hash. The plaintext
// goes to the user; only the hash is stored.
func GenerateToken() (token, hash string, err error) {
	b := make([]byte, TokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", oops.Code("TOKEN_GENERATE_FAILED").Wrap(err)
	}
	token = hex.EncodeToString(b)
	return token, HashToken(token), nil
}

// HashToken returns the hex sha256 of a plaintext token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerificationTokenRepository persists verification tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *VerificationToken) error

	// Consume atomically deletes the unexpired token with the given hash and
	// returns its account. ErrTokenNotRedeemable if no row was deleted.
	Consume(ctx context.Context, tokenHash string, now time.Time) (ulid.ULID, error)

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PasswordResetTokenRepository persists password reset tokens.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error

	// MarkUsed atomically sets used_at on an unused, unexpired token and
	// returns its account. ErrTokenNotRedeemable if no row matched.
	MarkUsed(ctx context.Context, tokenHash string, now time.Time) (ulid.ULID, error)

	// DeleteExpired removes expired and already-used tokens.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
