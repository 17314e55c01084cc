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

	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/internal/store"
)

const gameDetailColumns = `g.id, g.venue_id, g.day, g.start_time, g.notes, g.created_at, g.updated_at,
		       v.name, v.street, v.city, v.state, v.zip`

// GameRepository implements schedule.GameRepository using PostgreSQL.
type GameRepository struct {
	db store.Querier
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(db store.Querier) *GameRepository {
	return &GameRepository{db: db}
}

// List returns games matching f with their venues, ordered by weekday then
// start time.
func (r *GameRepository) List(ctx context.Context, f schedule.GameFilter) ([]*schedule.GameDetail, error) {
	var (
		day     *int16
		venueID *string
	)
	if f.Day != nil {
		d := int16(*f.Day) //nolint:gosec // weekday is 0-6
		day = &d
	}
	if f.VenueID != nil {
		s := f.VenueID.String()
		venueID = &s
	}

	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT `+gameDetailColumns+`
		FROM games g
		JOIN venues v ON v.id = g.venue_id
		WHERE ($1::smallint IS NULL OR g.day = $1)
		  AND ($2::text IS NULL OR g.venue_id = $2)
		ORDER BY g.day, g.start_time, g.id
	`, day, venueID)
	if err != nil {
		return nil, oops.Code("GAME_LIST_FAILED").With("operation", "list games").Wrap(err)
	}
	defer rows.Close()

	games := make([]*schedule.GameDetail, 0)
	for rows.Next() {
		g, err := scanGameDetail(rows)
		if err != nil {
			return nil, oops.Code("GAME_LIST_FAILED").With("operation", "scan game").Wrap(err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("GAME_LIST_FAILED").With("operation", "iterate games").Wrap(err)
	}
	return games, nil
}

// Get returns one game with its venue.
func (r *GameRepository) Get(ctx context.Context, id ulid.ULID) (*schedule.GameDetail, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+gameDetailColumns+`
		FROM games g
		JOIN venues v ON v.id = g.venue_id
		WHERE g.id = $1
	`, id.String())

	g, err := scanGameDetail(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gameNotFound(id)
	}
	if err != nil {
		return nil, oops.Code("GAME_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return g, nil
}

// Create stores a new game. An unknown venue is reported as
// schedule.ErrVenueNotFound.
func (r *GameRepository) Create(ctx context.Context, g *schedule.Game) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO games (id, venue_id, day, start_time, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, g.ID.String(), g.VenueID.String(), int16(g.Day), g.StartTime, g.Notes) //nolint:gosec // weekday is 0-6
	if store.IsForeignKeyViolation(err, store.ConstraintGameVenue) {
		return venueNotFound(g.VenueID)
	}
	if err != nil {
		return oops.Code("GAME_CREATE_FAILED").With("id", g.ID.String()).Wrap(err)
	}
	return nil
}

// Update replaces a game's venue, day, time and notes.
func (r *GameRepository) Update(ctx context.Context, g *schedule.Game) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE games
		SET venue_id = $2, day = $3, start_time = $4, notes = $5, updated_at = now()
		WHERE id = $1
	`, g.ID.String(), g.VenueID.String(), int16(g.Day), g.StartTime, g.Notes) //nolint:gosec // weekday is 0-6
	if store.IsForeignKeyViolation(err, store.ConstraintGameVenue) {
		return venueNotFound(g.VenueID)
	}
	if err != nil {
		return oops.Code("GAME_UPDATE_FAILED").With("id", g.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return gameNotFound(g.ID)
	}
	return nil
}

// Delete removes a game. Its signups cascade.
func (r *GameRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `DELETE FROM games WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("GAME_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return gameNotFound(id)
	}
	return nil
}

// scanGameDetail scans gameDetailColumns followed by any extra columns.
func scanGameDetail(row pgx.Row, extra ...any) (*schedule.GameDetail, error) {
	var (
		idStr, venueStr          string
		day                      int16
		street, city, state, zip string
		g                        schedule.GameDetail
	)
	dest := []any{
		&idStr, &venueStr, &day, &g.StartTime, &g.Notes, &g.CreatedAt, &g.UpdatedAt,
		&g.VenueName, &street, &city, &state, &zip,
	}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}
	if g.ID, err = parseID("game", idStr); err != nil {
		return nil, err
	}
	if g.VenueID, err = parseID("venue", venueStr); err != nil {
		return nil, err
	}
	g.Day = time.Weekday(day)
	g.VenueAddress = schedule.FormatAddress(street, city, state, zip)
	return &g, nil
}

func gameNotFound(id ulid.ULID) error {
	return oops.Code("GAME_NOT_FOUND").With("id", id.String()).Wrap(schedule.ErrGameNotFound)
}

var _ schedule.GameRepository = (*GameRepository)(nil)
