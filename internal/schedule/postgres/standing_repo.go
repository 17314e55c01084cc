// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/internal/store"
)

// StandingRepository implements schedule.StandingRepository using
// PostgreSQL. Standings are written by the seed loader.
type StandingRepository struct {
	db store.Querier
}

// NewStandingRepository creates a new StandingRepository.
func NewStandingRepository(db store.Querier) *StandingRepository {
	return &StandingRepository{db: db}
}

// List returns standings for period, or for every period when empty.
func (r *StandingRepository) List(ctx context.Context, period string) ([]*schedule.Standing, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT p.account_id, a.first_name, a.last_name, a.email, p.period, p.points, p.wins
		FROM player_standings p
		JOIN accounts a ON a.id = p.account_id
		WHERE $1::text = '' OR p.period = $1
		ORDER BY p.points DESC, p.wins DESC, p.period, p.account_id
	`, period)
	if err != nil {
		return nil, oops.Code("STANDINGS_LIST_FAILED").With("period", period).Wrap(err)
	}
	defer rows.Close()

	standings := make([]*schedule.Standing, 0)
	for rows.Next() {
		var (
			idStr, first, last, email string
			s                         schedule.Standing
		)
		if err := rows.Scan(&idStr, &first, &last, &email, &s.Period, &s.Points, &s.Wins); err != nil {
			return nil, oops.Code("STANDINGS_LIST_FAILED").With("operation", "scan standing").Wrap(err)
		}
		if s.AccountID, err = parseID("account", idStr); err != nil {
			return nil, err
		}
		s.DisplayName = auth.DisplayName(first, last, email)
		standings = append(standings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("STANDINGS_LIST_FAILED").With("operation", "iterate standings").Wrap(err)
	}
	return standings, nil
}

var _ schedule.StandingRepository = (*StandingRepository)(nil)
