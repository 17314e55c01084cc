// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package seed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
)

// Result counts what Apply created and what already existed.
type Result struct {
	AdminCreated  bool
	AdminSkipped  bool
	VenuesCreated int
	VenuesSkipped int
	GamesCreated  int
	GamesSkipped  int
}

// Seeder applies manifests through the repositories. Entries that already
// exist are skipped, so applying the same manifest twice changes nothing.
// Entries are written one at a time; a failure leaves earlier entries in
// place and a rerun picks up where it stopped.
type Seeder struct {
	accounts auth.AccountRepository
	venues   schedule.VenueRepository
	games    schedule.GameRepository
	hasher   auth.PasswordHasher
	logger   *slog.Logger
	now      func() time.Time
}

// NewSeeder creates a Seeder. A nil logger uses slog.Default().
func NewSeeder(
	accounts auth.AccountRepository,
	venues schedule.VenueRepository,
	games schedule.GameRepository,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (*Seeder, error) {
	switch {
	case accounts == nil:
		return nil, oops.Errorf("account repository is required")
	case venues == nil:
		return nil, oops.Errorf("venue repository is required")
	case games == nil:
		return nil, oops.Errorf("game repository is required")
	case hasher == nil:
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		accounts: accounts,
		venues:   venues,
		games:    games,
		hasher:   hasher,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Apply writes the manifest's admin, venues and games.
func (s *Seeder) Apply(ctx context.Context, m *Manifest) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	if m.Admin != nil {
		created, err := s.seedAdmin(ctx, m.Admin)
		if err != nil {
			return res, err
		}
		res.AdminCreated, res.AdminSkipped = created, !created
	}

	venueIDs, err := s.seedVenues(ctx, m.Venues, res)
	if err != nil {
		return res, err
	}
	if err := s.seedGames(ctx, m.Games, venueIDs, res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, a *Admin) (bool, error) {
	email := auth.NormalizeEmail(a.Email)

	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		s.logger.InfoContext(ctx, "admin account already exists, skipping", "email", email)
		return false, nil
	}
	if !errors.Is(err, auth.ErrAccountNotFound) {
		return false, oops.Code("SEED_FAILED").With("entry", "admin").Wrap(err)
	}

	hash, err := s.hasher.Hash(a.Password)
	if err != nil {
		return false, oops.Code("SEED_FAILED").With("entry", "admin").Wrap(err)
	}
	now := s.now()
	account := &auth.Account{
		ID:              ulid.Make(),
		Email:           email,
		PasswordHash:    hash,
		FirstName:       strings.TrimSpace(a.FirstName),
		LastName:        strings.TrimSpace(a.LastName),
		Role:            auth.RoleAdmin,
		Status:          auth.StatusActive,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return false, nil
		}
		return false, oops.Code("SEED_FAILED").With("entry", "admin").Wrap(err)
	}
	s.logger.InfoContext(ctx, "created admin account", "account_id", account.ID.String(), "email", email)
	return true, nil
}

// seedVenues creates missing venues and returns the ID of every venue by
// name, including ones that were already stored.
func (s *Seeder) seedVenues(ctx context.Context, venues []Venue, res *Result) (map[string]ulid.ULID, error) {
	existing, err := s.venues.List(ctx)
	if err != nil {
		return nil, oops.Code("SEED_FAILED").With("entry", "venues").Wrap(err)
	}
	ids := make(map[string]ulid.ULID, len(existing)+len(venues))
	for _, v := range existing {
		ids[v.Name] = v.ID
	}

	for _, mv := range venues {
		name := strings.TrimSpace(mv.Name)
		if _, ok := ids[name]; ok {
			res.VenuesSkipped++
			continue
		}
		now := s.now()
		v := &schedule.Venue{
			ID:        ulid.Make(),
			Name:      name,
			Street:    strings.TrimSpace(mv.Street),
			City:      strings.TrimSpace(mv.City),
			State:     strings.TrimSpace(mv.State),
			Zip:       strings.TrimSpace(mv.Zip),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.venues.Create(ctx, v); err != nil {
			if errors.Is(err, schedule.ErrVenueNameTaken) {
				res.VenuesSkipped++
				continue
			}
			return nil, oops.Code("SEED_FAILED").With("entry", "venue").With("name", name).Wrap(err)
		}
		ids[name] = v.ID
		res.VenuesCreated++
		s.logger.InfoContext(ctx, "created venue", "venue_id", v.ID.String(), "name", name)
	}
	return ids, nil
}

type gameKey struct {
	venueID ulid.ULID
	day     time.Weekday
	start   string
}

// seedGames creates games that have no existing game at the same venue,
// weekday and start time.
func (s *Seeder) seedGames(ctx context.Context, games []Game, venueIDs map[string]ulid.ULID, res *Result) error {
	if len(games) == 0 {
		return nil
	}
	existing, err := s.games.List(ctx, schedule.GameFilter{})
	if err != nil {
		return oops.Code("SEED_FAILED").With("entry", "games").Wrap(err)
	}
	seen := make(map[gameKey]bool, len(existing))
	for _, g := range existing {
		seen[gameKey{g.VenueID, g.Day, g.StartTime}] = true
	}

	for i, mg := range games {
		venueName := strings.TrimSpace(mg.Venue)
		venueID, ok := venueIDs[venueName]
		if !ok {
			return oops.Code("SEED_UNKNOWN_VENUE").
				With("entry", i).
				With("venue", venueName).
				Errorf("game %d references unknown venue %q", i, venueName)
		}
		day, err := schedule.ParseDay(mg.Day)
		if err != nil {
			return oops.Code("SEED_ENTRY_INVALID").With("entry", i).Wrap(err)
		}
		start, err := schedule.NormalizeTime(mg.Time)
		if err != nil {
			return oops.Code("SEED_ENTRY_INVALID").With("entry", i).Wrap(err)
		}

		key := gameKey{venueID, day, start}
		if seen[key] {
			res.GamesSkipped++
			continue
		}

		now := s.now()
		g := &schedule.Game{
			ID:        ulid.Make(),
			VenueID:   venueID,
			Day:       day,
			StartTime: start,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if notes := strings.TrimSpace(mg.Notes); notes != "" {
			g.Notes = &notes
		}
		if err := s.games.Create(ctx, g); err != nil {
			return oops.Code("SEED_FAILED").With("entry", i).Wrap(err)
		}
		seen[key] = true
		res.GamesCreated++
		s.logger.InfoContext(ctx, "created game",
			"game_id", g.ID.String(),
			"venue", venueName,
			"day", day.String(),
			"start_time", start)
	}
	return nil
}
