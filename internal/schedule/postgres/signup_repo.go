// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/internal/store"
)

// SignupRepository implements schedule.SignupRepository using PostgreSQL.
// The unique constraint on game_signups.account_id decides concurrent
// signups for the same account.
type SignupRepository struct {
	db store.Querier
}

// NewSignupRepository creates a new SignupRepository.
func NewSignupRepository(db store.Querier) *SignupRepository {
	return &SignupRepository{db: db}
}

// Create stores a signup.
func (r *SignupRepository) Create(ctx context.Context, s *schedule.Signup) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO game_signups (id, game_id, account_id, signed_up_at)
		VALUES ($1, $2, $3, $4)
	`, s.ID.String(), s.GameID.String(), s.AccountID.String(), s.SignedUpAt)
	switch {
	case err == nil:
		return nil
	case store.IsUniqueViolation(err, store.ConstraintSignupAccount):
		return oops.Code("SIGNUP_EXISTS").
			With("account_id", s.AccountID.String()).
			Wrap(schedule.ErrSignupExists)
	case store.IsForeignKeyViolation(err, store.ConstraintSignupGame):
		return gameNotFound(s.GameID)
	case store.IsForeignKeyViolation(err, store.ConstraintSignupOwner):
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("account_id", s.AccountID.String()).
			Wrap(auth.ErrAccountNotFound)
	default:
		return oops.Code("SIGNUP_CREATE_FAILED").
			With("account_id", s.AccountID.String()).
			With("game_id", s.GameID.String()).
			Wrap(err)
	}
}

// GetByAccount returns the account's signup.
func (r *SignupRepository) GetByAccount(ctx context.Context, accountID ulid.ULID) (*schedule.Signup, error) {
	var (
		idStr, gameStr string
		s              schedule.Signup
	)
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, game_id, signed_up_at
		FROM game_signups
		WHERE account_id = $1
	`, accountID.String()).Scan(&idStr, &gameStr, &s.SignedUpAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, noActiveSignup(accountID)
	}
	if err != nil {
		return nil, oops.Code("SIGNUP_GET_FAILED").With("account_id", accountID.String()).Wrap(err)
	}
	if s.ID, err = parseID("signup", idStr); err != nil {
		return nil, err
	}
	if s.GameID, err = parseID("game", gameStr); err != nil {
		return nil, err
	}
	s.AccountID = accountID
	return &s, nil
}

// Detail returns the account's signup with its game and venue.
func (r *SignupRepository) Detail(ctx context.Context, accountID ulid.ULID) (*schedule.SignupDetail, error) {
	var d schedule.SignupDetail
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+gameDetailColumns+`, s.signed_up_at
		FROM game_signups s
		JOIN games g ON g.id = s.game_id
		JOIN venues v ON v.id = g.venue_id
		WHERE s.account_id = $1
	`, accountID.String())

	g, err := scanGameDetail(row, &d.SignedUpAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, noActiveSignup(accountID)
	}
	if err != nil {
		return nil, oops.Code("SIGNUP_DETAIL_FAILED").With("account_id", accountID.String()).Wrap(err)
	}
	d.GameDetail = *g
	return &d, nil
}

// Delete removes the account's signup for the game.
func (r *SignupRepository) Delete(ctx context.Context, accountID, gameID ulid.ULID) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM game_signups WHERE account_id = $1 AND game_id = $2
	`, accountID.String(), gameID.String())
	if err != nil {
		return oops.Code("SIGNUP_DELETE_FAILED").
			With("account_id", accountID.String()).
			With("game_id", gameID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SIGNUP_NOT_FOUND").
			With("account_id", accountID.String()).
			With("game_id", gameID.String()).
			Wrap(schedule.ErrSignupNotFound)
	}
	return nil
}

// ListByGame returns the game's participants in signup order.
func (r *SignupRepository) ListByGame(ctx context.Context, gameID ulid.ULID) ([]*schedule.Participant, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT a.id, a.first_name, a.last_name, a.email, s.signed_up_at
		FROM game_signups s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.game_id = $1
		ORDER BY s.signed_up_at, a.id
	`, gameID.String())
	if err != nil {
		return nil, oops.Code("SIGNUP_LIST_FAILED").With("game_id", gameID.String()).Wrap(err)
	}
	defer rows.Close()

	participants := make([]*schedule.Participant, 0)
	for rows.Next() {
		var (
			idStr, first, last string
			p                  schedule.Participant
		)
		if err := rows.Scan(&idStr, &first, &last, &p.Email, &p.SignedUpAt); err != nil {
			return nil, oops.Code("SIGNUP_LIST_FAILED").With("operation", "scan participant").Wrap(err)
		}
		if p.AccountID, err = parseID("account", idStr); err != nil {
			return nil, err
		}
		p.DisplayName = auth.DisplayName(first, last, p.Email)
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SIGNUP_LIST_FAILED").With("operation", "iterate participants").Wrap(err)
	}
	return participants, nil
}

func noActiveSignup(accountID ulid.ULID) error {
	return oops.Code("SIGNUP_NONE").With("account_id", accountID.String()).Wrap(schedule.ErrNoActiveSignup)
}

var _ schedule.SignupRepository = (*SignupRepository)(nil)
