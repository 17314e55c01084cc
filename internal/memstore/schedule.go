// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/schedule"
)

type venueRepo struct{ s *Store }

func (r *venueRepo) List(ctx context.Context) ([]*schedule.Venue, error) {
	out := make([]*schedule.Venue, 0)
	err := r.s.do(ctx, func(st *state) error {
		for _, v := range st.venues {
			out = append(out, &v)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *schedule.Venue) int { return strings.Compare(a.Name, b.Name) })
	return out, err
}

func (r *venueRepo) Get(ctx context.Context, id ulid.ULID) (*schedule.Venue, error) {
	var out *schedule.Venue
	err := r.s.do(ctx, func(st *state) error {
		v, ok := st.venues[id]
		if !ok {
			return venueNotFound(id)
		}
		out = &v
		return nil
	})
	return out, err
}

func (r *venueRepo) Create(ctx context.Context, v *schedule.Venue) error {
	return r.s.do(ctx, func(st *state) error {
		if venueNameTaken(st, v.Name, v.ID) {
			return oops.Code("VENUE_NAME_TAKEN").With("name", v.Name).Wrap(schedule.ErrVenueNameTaken)
		}
		now := time.Now().UTC()
		stored := *v
		stored.CreatedAt, stored.UpdatedAt = now, now
		st.venues[v.ID] = stored
		return nil
	})
}

func (r *venueRepo) Update(ctx context.Context, v *schedule.Venue) error {
	return r.s.do(ctx, func(st *state) error {
		current, ok := st.venues[v.ID]
		if !ok {
			return venueNotFound(v.ID)
		}
		if venueNameTaken(st, v.Name, v.ID) {
			return oops.Code("VENUE_NAME_TAKEN").With("name", v.Name).Wrap(schedule.ErrVenueNameTaken)
		}
		stored := *v
		stored.CreatedAt = current.CreatedAt
		stored.UpdatedAt = time.Now().UTC()
		st.venues[v.ID] = stored
		return nil
	})
}

func (r *venueRepo) Delete(ctx context.Context, id ulid.ULID) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.venues[id]; !ok {
			return venueNotFound(id)
		}
		for _, g := range st.games {
			if g.VenueID == id {
				return oops.Code("VENUE_IN_USE").With("venue_id", id.String()).Wrap(schedule.ErrVenueInUse)
			}
		}
		delete(st.venues, id)
		return nil
	})
}

func venueNameTaken(st *state, name string, except ulid.ULID) bool {
	for id, v := range st.venues {
		if id != except && v.Name == name {
			return true
		}
	}
	return false
}

func venueNotFound(id ulid.ULID) error {
	return oops.Code("VENUE_NOT_FOUND").With("venue_id", id.String()).Wrap(schedule.ErrVenueNotFound)
}

type gameRepo struct{ s *Store }

func (r *gameRepo) List(ctx context.Context, f schedule.GameFilter) ([]*schedule.GameDetail, error) {
	out := make([]*schedule.GameDetail, 0)
	err := r.s.do(ctx, func(st *state) error {
		for _, g := range st.games {
			if f.Day != nil && g.Day != *f.Day {
				continue
			}
			if f.VenueID != nil && g.VenueID != *f.VenueID {
				continue
			}
			out = append(out, gameDetail(st, g))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *schedule.GameDetail) int {
		return cmp.Or(
			cmp.Compare(a.Day, b.Day),
			strings.Compare(a.StartTime, b.StartTime),
			a.ID.Compare(b.ID),
		)
	})
	return out, err
}

func (r *gameRepo) Get(ctx context.Context, id ulid.ULID) (*schedule.GameDetail, error) {
	var out *schedule.GameDetail
	err := r.s.do(ctx, func(st *state) error {
		g, ok := st.games[id]
		if !ok {
			return gameNotFound(id)
		}
		out = gameDetail(st, g)
		return nil
	})
	return out, err
}

func (r *gameRepo) Create(ctx context.Context, g *schedule.Game) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.venues[g.VenueID]; !ok {
			return venueNotFound(g.VenueID)
		}
		now := time.Now().UTC()
		stored := *g
		stored.CreatedAt, stored.UpdatedAt = now, now
		st.games[g.ID] = stored
		return nil
	})
}

func (r *gameRepo) Update(ctx context.Context, g *schedule.Game) error {
	return r.s.do(ctx, func(st *state) error {
		current, ok := st.games[g.ID]
		if !ok {
			return gameNotFound(g.ID)
		}
		if _, ok := st.venues[g.VenueID]; !ok {
			return venueNotFound(g.VenueID)
		}
		stored := *g
		stored.CreatedAt = current.CreatedAt
		stored.UpdatedAt = time.Now().UTC()
		st.games[g.ID] = stored
		return nil
	})
}

// Delete removes the game and cascades to its signups.
func (r *gameRepo) Delete(ctx context.Context, id ulid.ULID) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.games[id]; !ok {
			return gameNotFound(id)
		}
		delete(st.games, id)
		deleteWhere(st.signups, func(s schedule.Signup) bool { return s.GameID == id })
		return nil
	})
}

func gameDetail(st *state, g schedule.Game) *schedule.GameDetail {
	v := st.venues[g.VenueID]
	return &schedule.GameDetail{Game: g, VenueName: v.Name, VenueAddress: v.Address()}
}

func gameNotFound(id ulid.ULID) error {
	return oops.Code("GAME_NOT_FOUND").With("game_id", id.String()).Wrap(schedule.ErrGameNotFound)
}

type signupRepo struct{ s *Store }

func (r *signupRepo) Create(ctx context.Context, s *schedule.Signup) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.games[s.GameID]; !ok {
			return gameNotFound(s.GameID)
		}
		if _, ok := st.accounts[s.AccountID]; !ok {
			return accountNotFound(s.AccountID)
		}
		if _, ok := signupOf(st, s.AccountID); ok {
			return oops.Code("SIGNUP_EXISTS").With("account_id", s.AccountID.String()).Wrap(schedule.ErrSignupExists)
		}
		st.signups[s.ID] = *s
		return nil
	})
}

func (r *signupRepo) GetByAccount(ctx context.Context, accountID ulid.ULID) (*schedule.Signup, error) {
	var out *schedule.Signup
	err := r.s.do(ctx, func(st *state) error {
		s, ok := signupOf(st, accountID)
		if !ok {
			return noActiveSignup(accountID)
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *signupRepo) Detail(ctx context.Context, accountID ulid.ULID) (*schedule.SignupDetail, error) {
	var out *schedule.SignupDetail
	err := r.s.do(ctx, func(st *state) error {
		s, ok := signupOf(st, accountID)
		if !ok {
			return noActiveSignup(accountID)
		}
		out = &schedule.SignupDetail{
			GameDetail: *gameDetail(st, st.games[s.GameID]),
			SignedUpAt: s.SignedUpAt,
		}
		return nil
	})
	return out, err
}

func (r *signupRepo) Delete(ctx context.Context, accountID, gameID ulid.ULID) error {
	return r.s.do(ctx, func(st *state) error {
		n := deleteWhere(st.signups, func(s schedule.Signup) bool {
			return s.AccountID == accountID && s.GameID == gameID
		})
		if n == 0 {
			return oops.Code("SIGNUP_NOT_FOUND").
				With("account_id", accountID.String()).
				With("game_id", gameID.String()).
				Wrap(schedule.ErrSignupNotFound)
		}
		return nil
	})
}

func (r *signupRepo) ListByGame(ctx context.Context, gameID ulid.ULID) ([]*schedule.Participant, error) {
	out := make([]*schedule.Participant, 0)
	err := r.s.do(ctx, func(st *state) error {
		for _, s := range st.signups {
			if s.GameID != gameID {
				continue
			}
			a := st.accounts[s.AccountID]
			out = append(out, &schedule.Participant{
				AccountID:   s.AccountID,
				DisplayName: a.DisplayName(),
				Email:       a.Email,
				SignedUpAt:  s.SignedUpAt,
			})
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *schedule.Participant) int {
		return cmp.Or(a.SignedUpAt.Compare(b.SignedUpAt), a.AccountID.Compare(b.AccountID))
	})
	return out, err
}

func signupOf(st *state, accountID ulid.ULID) (schedule.Signup, bool) {
	for _, s := range st.signups {
		if s.AccountID == accountID {
			return s, true
		}
	}
	return schedule.Signup{}, false
}

func noActiveSignup(accountID ulid.ULID) error {
	return oops.Code("SIGNUP_NONE").With("account_id", accountID.String()).Wrap(schedule.ErrNoActiveSignup)
}

type standingRepo struct{ s *Store }

func (r *standingRepo) List(ctx context.Context, period string) ([]*schedule.Standing, error) {
	out := make([]*schedule.Standing, 0)
	err := r.s.do(ctx, func(st *state) error {
		for k, row := range st.standings {
			if period != "" && k.period != period {
				continue
			}
			a := st.accounts[k.accountID]
			out = append(out, &schedule.Standing{
				AccountID:   k.accountID,
				DisplayName: a.DisplayName(),
				Period:      k.period,
				Points:      row.points,
				Wins:        row.wins,
			})
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *schedule.Standing) int {
		return cmp.Or(
			cmp.Compare(b.Points, a.Points),
			cmp.Compare(b.Wins, a.Wins),
			strings.Compare(a.Period, b.Period),
			a.AccountID.Compare(b.AccountID),
		)
	})
	return out, err
}
