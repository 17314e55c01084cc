// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names declared by the migrations.
const (
	ConstraintAccountEmail  = "accounts_email_key"
	ConstraintSignupAccount = "game_signups_account_id_key"
	ConstraintVenueName     = "venues_name_key"
	ConstraintGameVenue     = "games_venue_id_fkey"
	ConstraintSignupGame    = "game_signups_game_id_fkey"
	ConstraintSignupOwner   = "game_signups_account_id_fkey"
)

// IsUniqueViolation reports whether err is a unique violation. When
// constraint is non-empty the violated constraint must match it.
func IsUniqueViolation(err error, constraint string) bool {
	return isPgError(err, pgerrcode.UniqueViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key violation. When
// constraint is non-empty the violated constraint must match it.
func IsForeignKeyViolation(err error, constraint string) bool {
	return isPgError(err, pgerrcode.ForeignKeyViolation, constraint)
}

func isPgError(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
