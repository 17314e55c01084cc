// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule

import (
	"context"
	"log/slog"
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
)

// Service manages venues and games and reads standings. Mutations require
// an admin session.
type Service struct {
	venues    VenueRepository
	games     GameRepository
	standings StandingRepository
	logger    *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default().
func NewService(venues VenueRepository, games GameRepository, standings StandingRepository, logger *slog.Logger) (*Service, error) {
	switch {
	case venues == nil:
		return nil, oops.Errorf("venue repository is required")
	case games == nil:
		return nil, oops.Errorf("game repository is required")
	case standings == nil:
		return nil, oops.Errorf("standing repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{venues: venues, games: games, standings: standings, logger: logger}, nil
}

// ListVenues returns all venues ordered by name.
func (s *Service) ListVenues(ctx context.Context) ([]*Venue, error) {
	return s.venues.List(ctx)
}

// CreateVenue adds a venue.
func (s *Service) CreateVenue(ctx context.Context, actor *auth.Claims, in VenueInput) (*Venue, error) {
	if err := auth.RequireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	in.trim()
	if err := in.Validate(); err != nil {
		return nil, oops.Code("VENUE_INVALID").Wrap(err)
	}

	v := &Venue{
		ID:     ulid.Make(),
		Name:   in.Name,
		Street: in.Street,
		City:   in.City,
		State:  in.State,
		Zip:    in.Zip,
	}
	if err := s.venues.Create(ctx, v); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "venue created", "venue_id", v.ID.String(), "actor", actor.Subject)
	return s.venues.Get(ctx, v.ID)
}

// UpdateVenue replaces a venue's fields.
func (s *Service) UpdateVenue(ctx context.Context, actor *auth.Claims, id ulid.ULID, in VenueInput) (*Venue, error) {
	if err := auth.RequireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	in.trim()
	if err := in.Validate(); err != nil {
		return nil, oops.Code("VENUE_INVALID").Wrap(err)
	}

	v := &Venue{
		ID:     id,
		Name:   in.Name,
		Street: in.Street,
		City:   in.City,
		State:  in.State,
		Zip:    in.Zip,
	}
	if err := s.venues.Update(ctx, v); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "venue updated", "venue_id", id.String(), "actor", actor.Subject)
	return s.venues.Get(ctx, id)
}

// DeleteVenue removes a venue that has no games.
func (s *Service) DeleteVenue(ctx context.Context, actor *auth.Claims, id ulid.ULID) error {
	if err := auth.RequireRole(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.venues.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "venue deleted", "venue_id", id.String(), "actor", actor.Subject)
	return nil
}

// ListGames returns games matching f, ordered by weekday then start time.
func (s *Service) ListGames(ctx context.Context, f GameFilter) ([]*GameDetail, error) {
	return s.games.List(ctx, f)
}

// GetGame returns one game with its venue.
func (s *Service) GetGame(ctx context.Context, id ulid.ULID) (*GameDetail, error) {
	return s.games.Get(ctx, id)
}

// CreateGame schedules a weekly game at a venue.
func (s *Service) CreateGame(ctx context.Context, actor *auth.Claims, in GameInput) (*GameDetail, error) {
	if err := auth.RequireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	g, err := s.gameFromInput(in)
	if err != nil {
		return nil, err
	}
	g.ID = ulid.Make()
	if err := s.games.Create(ctx, g); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "game created", "game_id", g.ID.String(), "actor", actor.Subject)
	return s.games.Get(ctx, g.ID)
}

// UpdateGame replaces a game's venue, day, time and notes.
func (s *Service) UpdateGame(ctx context.Context, actor *auth.Claims, id ulid.ULID, in GameInput) (*GameDetail, error) {
	if err := auth.RequireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	g, err := s.gameFromInput(in)
	if err != nil {
		return nil, err
	}
	g.ID = id
	if err := s.games.Update(ctx, g); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "game updated", "game_id", id.String(), "actor", actor.Subject)
	return s.games.Get(ctx, id)
}

// DeleteGame removes a game and its signups.
func (s *Service) DeleteGame(ctx context.Context, actor *auth.Claims, id ulid.ULID) error {
	if err := auth.RequireRole(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "game deleted", "game_id", id.String(), "actor", actor.Subject)
	return nil
}

// Standings returns ranked standings for period (all periods when empty)
// and the sorted list of periods present.
func (s *Service) Standings(ctx context.Context, period string) ([]*Standing, []string, error) {
	list, err := s.standings.List(ctx, period)
	if err != nil {
		return nil, nil, err
	}
	for i, st := range list {
		st.Rank = i + 1
	}
	if period != "" {
		return list, []string{period}, nil
	}
	periods := make([]string, 0, len(list))
	for _, st := range list {
		periods = append(periods, st.Period)
	}
	slices.Sort(periods)
	return list, slices.Compact(periods), nil
}

func (s *Service) gameFromInput(in GameInput) (*Game, error) {
	if err := in.Validate(); err != nil {
		return nil, oops.Code("GAME_INVALID").Wrap(err)
	}
	g, err := in.toGame()
	if err != nil {
		return nil, oops.Code("GAME_INVALID").Wrap(err)
	}
	return g, nil
}
