// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// dummyPasswordHash is verified when no account matches so that unknown
// emails cost the same as wrong passwords. It uses the current argon2id
// parameters and matches no password.
//
//nolint:gosec // G101: not a credential
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=2,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Registration is the input to Register.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Credentials owns password state: registration, verification, changes and
// login authentication.
type Credentials struct {
	accounts AccountRepository
	hasher   PasswordHasher
	logger   *slog.Logger
	now      func() time.Time
}

// NewCredentials creates Credentials. A nil logger uses slog.Default().
func NewCredentials(accounts AccountRepository, hasher PasswordHasher, logger *slog.Logger) (*Credentials, error) {
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Credentials{accounts: accounts, hasher: hasher, logger: logger, now: time.Now}, nil
}

// Register validates the input and creates an unverified member account.
func (c *Credentials) Register(ctx context.Context, r Registration) (*Account, error) {
	email := NormalizeEmail(r.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, oops.Code("REGISTER_INVALID").Wrap(err)
	}
	first, last := strings.TrimSpace(r.FirstName), strings.TrimSpace(r.LastName)
	if err := validateNames(first, last); err != nil {
		return nil, oops.Code("REGISTER_INVALID").Wrap(err)
	}
	if err := ValidatePassword("password", r.Password); err != nil {
		return nil, err
	}

	hash, err := c.hasher.Hash(r.Password)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	now := c.now()
	account := &Account{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Role:         RoleMember,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, errutil.ErrConflict) {
			return nil, oops.Code("EMAIL_TAKEN").With("email", email).Wrap(errutil.Conflict("Email already registered"))
		}
		return nil, oops.Code("REGISTER_FAILED").With("operation", "create account").Wrap(err)
	}
	return account, nil
}

// VerifyPassword reports whether candidate is the account's password.
func (c *Credentials) VerifyPassword(ctx context.Context, accountID ulid.ULID, candidate string) (bool, error) {
	account, err := c.accounts.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	ok, err := c.hasher.Verify(candidate, account.PasswordHash)
	if err != nil {
		return false, oops.Code("PASSWORD_VERIFY_FAILED").With("account_id", accountID.String()).Wrap(err)
	}
	return ok, nil
}

// Authenticate checks an email and password pair and returns the account.
// Unknown emails and wrong passwords produce the same error after the same
// amount of hashing work. Legacy hashes are upgraded on success.
func (c *Credentials) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	invalid := oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(errutil.Authentication("Invalid email or password"))

	account, err := c.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, errutil.ErrNotFound) {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "get account by email").Wrap(err)
	}

	if account == nil {
		_, _ = c.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing only
		return nil, invalid
	}

	ok, err := c.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("account_id", account.ID.String()).
			Wrap(err)
	}
	if !ok {
		return nil, invalid
	}

	if c.hasher.NeedsUpgrade(account.PasswordHash) {
		c.upgradeHash(ctx, account, password)
	}
	return account, nil
}

func (c *Credentials) upgradeHash(ctx context.Context, account *Account, password string) {
	hash, err := c.hasher.Hash(password)
	if err == nil {
		err = c.accounts.UpdatePassword(ctx, account.ID, hash)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "password hash upgrade failed",
			"account_id", account.ID.String(),
			"error", err)
		return
	}
	account.PasswordHash = hash
}

// ChangePassword replaces the password after checking the current one.
func (c *Credentials) ChangePassword(ctx context.Context, accountID ulid.ULID, current, next string) error {
	ok, err := c.VerifyPassword(ctx, accountID, current)
	if err != nil {
		return err
	}
	if !ok {
		return oops.Code("PASSWORD_INCORRECT").
			With("account_id", accountID.String()).
			Wrap(errutil.Authentication("Current password is incorrect"))
	}
	if err := ValidatePassword("newPassword", next); err != nil {
		return err
	}
	return c.SetPassword(ctx, accountID, next)
}

// SetPassword replaces the password without checking the current one.
// Sessions already issued stay valid until they expire.
func (c *Credentials) SetPassword(ctx context.Context, accountID ulid.ULID, next string) error {
	if err := ValidatePassword("newPassword", next); err != nil {
		return err
	}
	hash, err := c.hasher.Hash(next)
	if err != nil {
		return oops.Code("PASSWORD_SET_FAILED").With("operation", "hash password").Wrap(err)
	}
	if err := c.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return oops.Code("PASSWORD_SET_FAILED").
			With("operation", "update password").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

func validateNames(first, last string) error {
	if first == "" {
		return errutil.Validation("firstName", "First name is required")
	}
	if last == "" {
		return errutil.Validation("lastName", "Last name is required")
	}
	return nil
}
