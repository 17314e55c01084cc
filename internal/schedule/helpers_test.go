// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/memstore"
	"github.com/gamenight/gamenight/internal/schedule"
)

type fixture struct {
	store   *memstore.Store
	svc     *schedule.Service
	signups *schedule.SignupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	svc, err := schedule.NewService(s.Venues(), s.Games(), s.Standings(), nil)
	require.NoError(t, err)
	signups, err := schedule.NewSignupService(s.Games(), s.Signups(), nil)
	require.NoError(t, err)
	return &fixture{store: s, svc: svc, signups: signups}
}

func claims(role auth.Role) *auth.Claims {
	return &auth.Claims{
		Email:            string(role) + "@x.com",
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: ulid.Make().String()},
	}
}

var admin = claims(auth.RoleAdmin)

func (f *fixture) account(t *testing.T, first, last string) *auth.Account {
	t.Helper()
	a := &auth.Account{
		ID:        ulid.Make(),
		Email:     ulid.Make().String() + "@x.com",
		FirstName: first,
		LastName:  last,
		Role:      auth.RoleMember,
		Status:    auth.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.store.Accounts().Create(context.Background(), a))
	return a
}

func (f *fixture) venue(t *testing.T, name string) *schedule.Venue {
	t.Helper()
	v, err := f.svc.CreateVenue(context.Background(), admin, schedule.VenueInput{
		Name:   name,
		Street: "1 Main St",
		City:   "Springfield",
		State:  "IL",
		Zip:    "62701",
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) game(t *testing.T, venue *schedule.Venue, day, at string) *schedule.GameDetail {
	t.Helper()
	g, err := f.svc.CreateGame(context.Background(), admin, schedule.GameInput{VenueID: venue.ID, Day: day, Time: at})
	require.NoError(t, err)
	return g
}
