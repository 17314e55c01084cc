// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/internal/store"
)

const venueColumns = `id, name, street, city, state, zip, created_at, updated_at`

// VenueRepository implements schedule.VenueRepository using PostgreSQL.
type VenueRepository struct {
	db store.Querier
}

// NewVenueRepository creates a new VenueRepository.
func NewVenueRepository(db store.Querier) *VenueRepository {
	return &VenueRepository{db: db}
}

// List returns all venues ordered by name.
func (r *VenueRepository) List(ctx context.Context) ([]*schedule.Venue, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		ORDER BY name, id
	`)
	if err != nil {
		return nil, oops.Code("VENUE_LIST_FAILED").With("operation", "list venues").Wrap(err)
	}
	defer rows.Close()

	venues := make([]*schedule.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, oops.Code("VENUE_LIST_FAILED").With("operation", "scan venue").Wrap(err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("VENUE_LIST_FAILED").With("operation", "iterate venues").Wrap(err)
	}
	return venues, nil
}

// Get returns a venue by ID.
func (r *VenueRepository) Get(ctx context.Context, id ulid.ULID) (*schedule.Venue, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE id = $1
	`, id.String())

	v, err := scanVenue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, venueNotFound(id)
	}
	if err != nil {
		return nil, oops.Code("VENUE_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return v, nil
}

// Create stores a new venue.
func (r *VenueRepository) Create(ctx context.Context, v *schedule.Venue) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO venues (id, name, street, city, state, zip)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID.String(), v.Name, v.Street, v.City, v.State, v.Zip)
	if store.IsUniqueViolation(err, store.ConstraintVenueName) {
		return venueNameTaken(v.Name)
	}
	if err != nil {
		return oops.Code("VENUE_CREATE_FAILED").With("name", v.Name).Wrap(err)
	}
	return nil
}

// Update replaces a venue's fields.
func (r *VenueRepository) Update(ctx context.Context, v *schedule.Venue) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE venues
		SET name = $2, street = $3, city = $4, state = $5, zip = $6, updated_at = now()
		WHERE id = $1
	`, v.ID.String(), v.Name, v.Street, v.City, v.State, v.Zip)
	if store.IsUniqueViolation(err, store.ConstraintVenueName) {
		return venueNameTaken(v.Name)
	}
	if err != nil {
		return oops.Code("VENUE_UPDATE_FAILED").With("id", v.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return venueNotFound(v.ID)
	}
	return nil
}

// Delete removes a venue. Venues with games are refused by the foreign key.
func (r *VenueRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `DELETE FROM venues WHERE id = $1`, id.String())
	if store.IsForeignKeyViolation(err, store.ConstraintGameVenue) {
		return oops.Code("VENUE_IN_USE").With("id", id.String()).Wrap(schedule.ErrVenueInUse)
	}
	if err != nil {
		return oops.Code("VENUE_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return venueNotFound(id)
	}
	return nil
}

func scanVenue(row pgx.Row) (*schedule.Venue, error) {
	var (
		idStr string
		v     schedule.Venue
	)
	if err := row.Scan(&idStr, &v.Name, &v.Street, &v.City, &v.State, &v.Zip, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}
	id, err := parseID("venue", idStr)
	if err != nil {
		return nil, err
	}
	v.ID = id
	return &v, nil
}

func venueNotFound(id ulid.ULID) error {
	return oops.Code("VENUE_NOT_FOUND").With("id", id.String()).Wrap(schedule.ErrVenueNotFound)
}

func venueNameTaken(name string) error {
	return oops.Code("VENUE_NAME_TAKEN").With("name", name).Wrap(schedule.ErrVenueNameTaken)
}

func parseID(kind, s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_ID").
			With("operation", "parse "+kind+" id").
			With("id", s).
			Wrap(err)
	}
	return id, nil
}

var _ schedule.VenueRepository = (*VenueRepository)(nil)
