// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// Role gates administrative capability.
type Role string

// Roles.
const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Status gates login independently of role.
type Status string

// Account statuses.
const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusSuspended
}

// Account is a registered user.
type Account struct {
	ID              ulid.ULID
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Role            Role
	Status          Status
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsVerified reports whether the account's email address has been confirmed.
func (a *Account) IsVerified() bool {
	return a.EmailVerifiedAt != nil
}

// DisplayName joins the account's names, falling back to the email address.
func (a *Account) DisplayName() string {
	return DisplayName(a.FirstName, a.LastName, a.Email)
}

// DisplayName joins first and last name, falling back to email when both are blank.
func DisplayName(first, last, email string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return email
	}
	return name
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks a normalized email address.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return errutil.Validation("email", "Invalid email format")
	}
	return nil
}

// AccountRepository persists accounts. Implementations return
// ErrAccountNotFound for missing rows and ErrEmailTaken when the email
// uniqueness constraint is violated.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*Account, error)

	UpdateProfile(ctx context.Context, id ulid.ULID, firstName, lastName string) error

	// UpdateEmail changes the address and clears its verification.
	UpdateEmail(ctx context.Context, id ulid.ULID, email string) error

	UpdateAdmin(ctx context.Context, id ulid.ULID, firstName, lastName string, role Role, status Status) error
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id ulid.ULID, at time.Time) error
	Delete(ctx context.Context, id ulid.ULID) error
}

// Transactor runs fn in a single storage transaction carried by ctx.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
