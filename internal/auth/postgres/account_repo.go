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

const accountColumns = `id, email, password_hash, first_name, last_name,
		       role, status, email_verified_at, created_at, updated_at`

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db store.Querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db store.Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO accounts (
			id, email, password_hash, first_name, last_name,
			role, status, email_verified_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		account.ID.String(),
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		string(account.Role),
		string(account.Status),
		account.EmailVerifiedAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if store.IsUniqueViolation(err, store.ConstraintAccountEmail) {
		return oops.Code("ACCOUNT_EMAIL_TAKEN").
			With("email", account.Email).
			Wrap(auth.ErrEmailTaken)
	}
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("email", account.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrAccountNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by its normalized email address.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrAccountNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			With("email", email).
			Wrap(err)
	}
	return account, nil
}

// List returns all accounts, newest first.
func (r *AccountRepository) List(ctx context.Context) ([]*auth.Account, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "list accounts").
			Wrap(err)
	}
	defer rows.Close()

	accounts := make([]*auth.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").
				With("operation", "scan account").
				Wrap(err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "iterate accounts").
			Wrap(err)
	}
	return accounts, nil
}

// UpdateProfile changes the account's names.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id ulid.ULID, firstName, lastName string) error {
	return r.update(ctx, "ACCOUNT_UPDATE_PROFILE_FAILED", id, `
		UPDATE accounts SET first_name = $2, last_name = $3, updated_at = now()
		WHERE id = $1
	`, firstName, lastName)
}

// UpdateEmail changes the account's address and clears its verification.
func (r *AccountRepository) UpdateEmail(ctx context.Context, id ulid.ULID, email string) error {
	err := r.update(ctx, "ACCOUNT_UPDATE_EMAIL_FAILED", id, `
		UPDATE accounts SET email = $2, email_verified_at = NULL, updated_at = now()
		WHERE id = $1
	`, email)
	if store.IsUniqueViolation(err, store.ConstraintAccountEmail) {
		return oops.Code("ACCOUNT_EMAIL_TAKEN").
			With("id", id.String()).
			With("email", email).
			Wrap(auth.ErrEmailTaken)
	}
	return err
}

// UpdateAdmin changes the fields an administrator may edit.
func (r *AccountRepository) UpdateAdmin(ctx context.Context, id ulid.ULID, firstName, lastName string, role auth.Role, status auth.Status) error {
	return r.update(ctx, "ACCOUNT_UPDATE_ADMIN_FAILED", id, `
		UPDATE accounts SET first_name = $2, last_name = $3, role = $4, status = $5, updated_at = now()
		WHERE id = $1
	`, firstName, lastName, string(role), string(status))
}

// UpdatePassword replaces the password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	return r.update(ctx, "ACCOUNT_UPDATE_PASSWORD_FAILED", id, `
		UPDATE accounts SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, passwordHash)
}

// MarkEmailVerified records when the account's address was confirmed.
func (r *AccountRepository) MarkEmailVerified(ctx context.Context, id ulid.ULID, at time.Time) error {
	return r.update(ctx, "ACCOUNT_MARK_VERIFIED_FAILED", id, `
		UPDATE accounts SET email_verified_at = $2, updated_at = now()
		WHERE id = $1
	`, at)
}

// Delete removes an account. Tokens and signups cascade.
func (r *AccountRepository) Delete(ctx context.Context, id ulid.ULID) error {
	return r.update(ctx, "ACCOUNT_DELETE_FAILED", id, `
		DELETE FROM accounts WHERE id = $1
	`)
}

// update runs a single-row statement keyed by id as $1. A statement that
// touches no row reports ErrAccountNotFound. Unique violations are returned
// unwrapped so callers can translate them.
func (r *AccountRepository) update(ctx context.Context, code string, id ulid.ULID, sql string, args ...any) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, sql, append([]any{id.String()}, args...)...)
	if store.IsUniqueViolation(err, "") {
		return err //nolint:wrapcheck // callers translate constraint violations
	}
	if err != nil {
		return oops.Code(code).
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrAccountNotFound)
	}
	return nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr      string
		account    auth.Account
		role       string
		status     string
		verifiedAt *time.Time
	)

	err := row.Scan(
		&idStr,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&role,
		&status,
		&verifiedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}

	account.ID = id
	account.Role = auth.Role(role)
	account.Status = auth.Status(status)
	account.EmailVerifiedAt = verifiedAt
	return &account, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
