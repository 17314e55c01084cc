// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// Session configuration.
const (
	MinSessionSecretLen = 32
	DefaultSessionTTL   = 7 * 24 * time.Hour
)

// Claims is the payload of a session token. Subject holds the account ID.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim.
func (c *Claims) AccountID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_INVALID_SUBJECT").Wrap(errutil.Authentication("Invalid or expired token"))
	}
	return id, nil
}

// SessionIssuer mints and validates stateless HS256 session tokens.
// Validation checks signature, expiry and issuer only; it never consults
// storage, so a token stays valid until it expires.
type SessionIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer creates a SessionIssuer. The secret must be at least
// MinSessionSecretLen bytes.
func NewSessionIssuer(secret []byte, issuer string, ttl time.Duration) (*SessionIssuer, error) {
	if len(secret) < MinSessionSecretLen {
		return nil, oops.Code("SESSION_SECRET_TOO_SHORT").
			With("min", MinSessionSecretLen).
			Errorf("session secret must be at least %d bytes", MinSessionSecretLen)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionIssuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// SetClock replaces the time source. Intended for tests.
func (s *SessionIssuer) SetClock(now func() time.Time) {
	s.now = now
}

// Issue signs a session token for the account.
func (s *SessionIssuer) Issue(account *Account) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Email: account.Email,
		Role:  account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, oops.Code("SESSION_SIGN_FAILED").Wrap(err)
	}
	return signed, claims, nil
}

// Validate verifies a session token and returns its claims. Any failure is
// an Authentication error with the same message.
func (s *SessionIssuer) Validate(token string) (*Claims, error) {
	if token == "" {
		return nil, oops.Code("SESSION_MISSING").Wrap(errutil.Authentication("Missing or invalid token"))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		code := "SESSION_INVALID"
		if errors.Is(err, jwt.ErrTokenExpired) {
			code = "SESSION_EXPIRED"
		}
		return nil, oops.Code(code).With("reason", err.Error()).Wrap(errutil.Authentication("Invalid or expired token"))
	}
	if !parsed.Valid {
		return nil, oops.Code("SESSION_INVALID").Wrap(errutil.Authentication("Invalid or expired token"))
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, err
	}
	return claims, nil
}

type claimsKey struct{}

// WithClaims returns a context carrying validated session claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}
