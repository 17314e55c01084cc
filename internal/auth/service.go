// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// Notifier delivers links to users. The core only produces the link.
type Notifier interface {
	SendVerificationLink(ctx context.Context, to, link string) error
	SendPasswordResetLink(ctx context.Context, to, link string) error
}

// Links builds the URLs placed in emails.
type Links struct {
	// APIURL is the public base URL of this server. The verification link
	// points at its GET /auth/verify-email endpoint.
	APIURL string
	// FrontendURL is the base URL of the web app.
	FrontendURL string
}

// VerifyEmail returns the email verification link for token.
func (l Links) VerifyEmail(token string) string {
	return strings.TrimRight(l.APIURL, "/") + "/auth/verify-email?token=" + url.QueryEscape(token)
}

// ResetPassword returns the password reset link for token.
func (l Links) ResetPassword(token string) string {
	return strings.TrimRight(l.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// Login returns the frontend login page with the given query.
func (l Links) Login(query string) string {
	return strings.TrimRight(l.FrontendURL, "/") + "/login?" + query
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Accounts    AccountRepository
	Credentials *Credentials
	Tokens      *TokenService
	Sessions    *SessionIssuer
	Transactor  Transactor
	Notifier    Notifier
	Links       Links
	Logger      *slog.Logger
}

// Service implements the account flows.
type Service struct {
	accounts    AccountRepository
	credentials *Credentials
	tokens      *TokenService
	sessions    *SessionIssuer
	tx          Transactor
	notifier    Notifier
	links       Links
	logger      *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default().
func NewService(cfg ServiceConfig) (*Service, error) {
	switch {
	case cfg.Accounts == nil:
		return nil, oops.Errorf("account repository is required")
	case cfg.Credentials == nil:
		return nil, oops.Errorf("credentials are required")
	case cfg.Tokens == nil:
		return nil, oops.Errorf("token service is required")
	case cfg.Sessions == nil:
		return nil, oops.Errorf("session issuer is required")
	case cfg.Transactor == nil:
		return nil, oops.Errorf("transactor is required")
	case cfg.Notifier == nil:
		return nil, oops.Errorf("notifier is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:    cfg.Accounts,
		credentials: cfg.Credentials,
		tokens:      cfg.Tokens,
		sessions:    cfg.Sessions,
		tx:          cfg.Transactor,
		notifier:    cfg.Notifier,
		links:       cfg.Links,
		logger:      logger,
	}, nil
}

// Links returns the link builder the service uses.
func (s *Service) Links() Links {
	return s.links
}

// Register creates the account and its first verification token together,
// then emails the link. A failed delivery is logged and does not fail the
// registration; the user can ask for another link.
func (s *Service) Register(ctx context.Context, r Registration) (*Account, error) {
	var (
		account *Account
		token   string
	)
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		if account, err = s.credentials.Register(ctx, r); err != nil {
			return err
		}
		token, err = s.tokens.IssueVerificationToken(ctx, account.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, account.ID, account.Email, token)
	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID.String())
	return account, nil
}

// VerifyEmail redeems a verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (ulid.ULID, error) {
	id, err := s.tokens.RedeemVerificationToken(ctx, token)
	if err != nil {
		return ulid.ULID{}, err
	}
	s.logger.InfoContext(ctx, "email verified", "account_id", id.String())
	return id, nil
}

// ResendVerification sends a fresh verification link when email belongs to
// an unverified account. It reports success either way.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, errutil.ErrNotFound) {
		return nil
	}
	if err != nil {
		return oops.Code("RESEND_FAILED").With("operation", "get account by email").Wrap(err)
	}
	if account.IsVerified() {
		return nil
	}

	token, err := s.tokens.IssueVerificationToken(ctx, account.ID)
	if err != nil {
		return err
	}
	s.sendVerification(ctx, account.ID, account.Email, token)
	return nil
}

// Login authenticates and mints a session token. Checks run in order:
// credentials, then email verification, then account status.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	account, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, errutil.ErrAuthentication) {
			recordLogin(OutcomeInvalid)
		} else {
			recordLogin(OutcomeError)
		}
		return "", nil, err
	}

	if !account.IsVerified() {
		recordLogin(OutcomeUnverified)
		return "", nil, oops.Code("EMAIL_NOT_VERIFIED").
			With("account_id", account.ID.String()).
			Wrap(errutil.Authorization("Email not verified"))
	}
	if account.Status != StatusActive {
		recordLogin(OutcomeSuspended)
		return "", nil, oops.Code("ACCOUNT_SUSPENDED").
			With("account_id", account.ID.String()).
			Wrap(errutil.Authorization("Account suspended"))
	}

	token, _, err := s.sessions.Issue(account)
	if err != nil {
		recordLogin(OutcomeError)
		return "", nil, err
	}
	recordLogin(OutcomeSuccess)
	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID.String())
	return token, account, nil
}

// Me re-reads the session's account.
func (s *Service) Me(ctx context.Context, claims *Claims) (*Account, error) {
	id, err := sessionAccount(claims)
	if err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, id)
}

// ForgotPassword emails a reset link when email belongs to an account. It
// reports success either way.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, errutil.ErrNotFound) {
		return nil
	}
	if err != nil {
		return oops.Code("FORGOT_PASSWORD_FAILED").With("operation", "get account by email").Wrap(err)
	}

	token, err := s.tokens.IssueResetToken(ctx, account.ID)
	if err != nil {
		return err
	}
	if err := s.notifier.SendPasswordResetLink(ctx, account.Email, s.links.ResetPassword(token)); err != nil {
		s.logger.ErrorContext(ctx, "password reset email failed",
			"account_id", account.ID.String(),
			"error", err)
	}
	return nil
}

// ResetPassword redeems a reset token and sets the new password in one
// transaction. If setting the password fails the token stays unused.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword("newPassword", newPassword); err != nil {
		return err
	}
	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		id, err := s.tokens.RedeemResetToken(ctx, token)
		if err != nil {
			return err
		}
		if err := s.credentials.SetPassword(ctx, id, newPassword); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "password reset", "account_id", id.String())
		return nil
	})
}

// ChangePassword changes the session account's password.
func (s *Service) ChangePassword(ctx context.Context, claims *Claims, current, next string) error {
	id, err := sessionAccount(claims)
	if err != nil {
		return err
	}
	return s.credentials.ChangePassword(ctx, id, current, next)
}

// ProfileUpdate is the input to UpdateProfile. A nil Email leaves the
// address unchanged.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     *string
}

// UpdateProfile changes names and optionally the email address. A new
// address loses its verification and receives a fresh link; the returned
// flag reports whether one was sent.
func (s *Service) UpdateProfile(ctx context.Context, claims *Claims, u ProfileUpdate) (*Account, bool, error) {
	id, err := sessionAccount(claims)
	if err != nil {
		return nil, false, err
	}
	first, last := strings.TrimSpace(u.FirstName), strings.TrimSpace(u.LastName)
	if err := validateNames(first, last); err != nil {
		return nil, false, oops.Code("PROFILE_INVALID").Wrap(err)
	}

	var (
		account  *Account
		newEmail string
		token    string
	)
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		current, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if u.Email != nil {
			if email := NormalizeEmail(*u.Email); email != "" && email != current.Email {
				if err := ValidateEmail(email); err != nil {
					return oops.Code("PROFILE_INVALID").Wrap(err)
				}
				if err := s.accounts.UpdateEmail(ctx, id, email); err != nil {
					if errors.Is(err, errutil.ErrConflict) {
						return oops.Code("EMAIL_TAKEN").Wrap(errutil.Conflict("Email already in use"))
					}
					return err
				}
				if token, err = s.tokens.IssueVerificationToken(ctx, id); err != nil {
					return err
				}
				newEmail = email
			}
		}

		if err := s.accounts.UpdateProfile(ctx, id, first, last); err != nil {
			return err
		}
		account, err = s.accounts.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if newEmail == "" {
		return account, false, nil
	}
	s.sendVerification(ctx, id, newEmail, token)
	return account, true, nil
}

// DeleteOwnAccount deletes the session's account with its tokens and signups.
func (s *Service) DeleteOwnAccount(ctx context.Context, claims *Claims) error {
	id, err := sessionAccount(claims)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "account deleted", "account_id", id.String(), "by", "self")
	return nil
}

func (s *Service) sendVerification(ctx context.Context, id ulid.ULID, to, token string) {
	if err := s.notifier.SendVerificationLink(ctx, to, s.links.VerifyEmail(token)); err != nil {
		s.logger.ErrorContext(ctx, "verification email failed",
			"account_id", id.String(),
			"error", err)
	}
}

func sessionAccount(claims *Claims) (ulid.ULID, error) {
	if err := RequireSession(claims); err != nil {
		return ulid.ULID{}, err
	}
	return claims.AccountID()
}
