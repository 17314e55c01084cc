// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// TokenService issues and redeems single-use verification and reset tokens.
// Unknown, expired and already-used tokens are rejected with the same
// TokenInvalid error.
type TokenService struct {
	accounts      AccountRepository
	verifications VerificationTokenRepository
	resets        PasswordResetTokenRepository
	tx            Transactor
	now           func() time.Time
}

// NewTokenService creates a TokenService.
func NewTokenService(
	accounts AccountRepository,
	verifications VerificationTokenRepository,
	resets PasswordResetTokenRepository,
	tx Transactor,
) (*TokenService, error) {
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if verifications == nil {
		return nil, oops.Errorf("verification token repository is required")
	}
	if resets == nil {
		return nil, oops.Errorf("reset token repository is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	return &TokenService{
		accounts:      accounts,
		verifications: verifications,
		resets:        resets,
		tx:            tx,
		now:           time.Now,
	}, nil
}

// SetClock replaces the time source. Intended for tests.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

// IssueVerificationToken stores a new verification token for the account,
// valid for VerificationTokenTTL, and returns the plaintext.
func (s *TokenService) IssueVerificationToken(ctx context.Context, accountID ulid.ULID) (string, error) {
	token, hash, err := GenerateToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	err = s.verifications.Create(ctx, &VerificationToken{
		TokenHash: hash,
		AccountID: accountID,
		ExpiresAt: now.Add(VerificationTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").
			With("purpose", PurposeVerification).
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return token, nil
}

// RedeemVerificationToken consumes the token and marks the account's email
// verified in one transaction. Of two concurrent redemptions exactly one
// succeeds.
func (s *TokenService) RedeemVerificationToken(ctx context.Context, token string) (ulid.ULID, error) {
	if token == "" {
		recordRedemption(PurposeVerification, OutcomeInvalid)
		return ulid.ULID{}, oops.Code("TOKEN_INVALID").Wrap(ErrTokenNotRedeemable)
	}

	var accountID ulid.ULID
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		id, err := s.verifications.Consume(ctx, HashToken(token), now)
		if err != nil {
			return err
		}
		if err := s.accounts.MarkEmailVerified(ctx, id, now); err != nil {
			return err
		}
		accountID = id
		return nil
	})
	if err != nil {
		return ulid.ULID{}, redemptionError(PurposeVerification, err)
	}

	recordRedemption(PurposeVerification, OutcomeSuccess)
	return accountID, nil
}

// IssueResetToken stores a new password reset token for the account, valid
// for ResetTokenTTL, and returns the plaintext.
func (s *TokenService) IssueResetToken(ctx context.Context, accountID ulid.ULID) (string, error) {
	token, hash, err := GenerateToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	err = s.resets.Create(ctx, &PasswordResetToken{
		TokenHash: hash,
		AccountID: accountID,
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").
			With("purpose", PurposeReset).
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return token, nil
}

// RedeemResetToken marks the token used and returns its account. Callers
// that change state based on the result should run it inside their own
// transaction so a later failure also un-uses the token.
func (s *TokenService) RedeemResetToken(ctx context.Context, token string) (ulid.ULID, error) {
	if token == "" {
		recordRedemption(PurposeReset, OutcomeInvalid)
		return ulid.ULID{}, oops.Code("TOKEN_INVALID").Wrap(ErrTokenNotRedeemable)
	}

	accountID, err := s.resets.MarkUsed(ctx, HashToken(token), s.now())
	if err != nil {
		return ulid.ULID{}, redemptionError(PurposeReset, err)
	}

	recordRedemption(PurposeReset, OutcomeSuccess)
	return accountID, nil
}

// PurgeExpired deletes expired verification tokens and expired or used
// reset tokens.
func (s *TokenService) PurgeExpired(ctx context.Context) (verifications, resets int64, err error) {
	now := s.now()
	verifications, err = s.verifications.DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, oops.Code("TOKEN_PURGE_FAILED").With("purpose", PurposeVerification).Wrap(err)
	}
	resets, err = s.resets.DeleteExpired(ctx, now)
	if err != nil {
		return verifications, 0, oops.Code("TOKEN_PURGE_FAILED").With("purpose", PurposeReset).Wrap(err)
	}
	return verifications, resets, nil
}

func redemptionError(purpose string, err error) error {
	if errors.Is(err, errutil.ErrTokenInvalid) {
		recordRedemption(purpose, OutcomeInvalid)
		return oops.Code("TOKEN_INVALID").With("purpose", purpose).Wrap(err)
	}
	recordRedemption(purpose, OutcomeError)
	return oops.Code("TOKEN_REDEEM_FAILED").With("purpose", purpose).Wrap(err)
}
