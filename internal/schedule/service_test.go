// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/pkg/errutil"
)

func TestService_MutationsRequireAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Pub")
	g := f.game(t, v, "Tuesday", "19:00")
	member := claims(auth.RoleMember)

	calls := map[string]func(*auth.Claims) error{
		"create venue": func(c *auth.Claims) error {
			_, err := f.svc.CreateVenue(ctx, c, schedule.VenueInput{Name: "X", Street: "s", City: "c", State: "s", Zip: "12345"})
			return err
		},
		"update venue": func(c *auth.Claims) error {
			_, err := f.svc.UpdateVenue(ctx, c, v.ID, schedule.VenueInput{Name: "X", Street: "s", City: "c", State: "s", Zip: "12345"})
			return err
		},
		"delete venue": func(c *auth.Claims) error { return f.svc.DeleteVenue(ctx, c, v.ID) },
		"create game": func(c *auth.Claims) error {
			_, err := f.svc.CreateGame(ctx, c, schedule.GameInput{VenueID: v.ID, Day: "Monday", Time: "18:00"})
			return err
		},
		"update game": func(c *auth.Claims) error {
			_, err := f.svc.UpdateGame(ctx, c, g.ID, schedule.GameInput{VenueID: v.ID, Day: "Monday", Time: "18:00"})
			return err
		},
		"delete game": func(c *auth.Claims) error { return f.svc.DeleteGame(ctx, c, g.ID) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			errutil.AssertKind(t, call(member), errutil.KindAuthorization)
			errutil.AssertKind(t, call(nil), errutil.KindAuthentication)
		})
	}

	games, err := f.svc.ListGames(ctx, schedule.GameFilter{})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "19:00:00", games[0].StartTime)
}

func TestService_VenueLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.svc.CreateVenue(ctx, admin, schedule.VenueInput{
		Name: "  The Pub ", Street: "1 Main St", City: "Springfield", State: "IL", Zip: " 62701 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "The Pub", v.Name)
	assert.Equal(t, "62701", v.Zip)
	assert.False(t, v.CreatedAt.IsZero())

	_, err = f.svc.CreateVenue(ctx, admin, schedule.VenueInput{Name: "The Pub", Street: "2 Elm", City: "c", State: "s", Zip: "12345"})
	errutil.AssertKind(t, err, errutil.KindConflict)

	_, err = f.svc.CreateVenue(ctx, admin, schedule.VenueInput{Name: "Cafe", Street: "2 Elm", City: "c", State: "s", Zip: "1234"})
	errutil.AssertKind(t, err, errutil.KindValidation)
	errutil.AssertErrorCode(t, err, "VENUE_INVALID")

	updated, err := f.svc.UpdateVenue(ctx, admin, v.ID, schedule.VenueInput{Name: "The Pub", Street: "3 Oak", City: "Shelbyville", State: "IL", Zip: "62565"})
	require.NoError(t, err)
	assert.Equal(t, "3 Oak, Shelbyville, IL 62565", updated.Address())

	_, err = f.svc.UpdateVenue(ctx, admin, ulid.Make(), schedule.VenueInput{Name: "Gone", Street: "s", City: "c", State: "s", Zip: "12345"})
	assert.ErrorIs(t, err, schedule.ErrVenueNotFound)

	g := f.game(t, v, "Friday", "20:00")
	err = f.svc.DeleteVenue(ctx, admin, v.ID)
	assert.ErrorIs(t, err, schedule.ErrVenueInUse)

	require.NoError(t, f.svc.DeleteGame(ctx, admin, g.ID))
	require.NoError(t, f.svc.DeleteVenue(ctx, admin, v.ID))

	venues, err := f.svc.ListVenues(ctx)
	require.NoError(t, err)
	assert.Empty(t, venues)
}

func TestService_GameLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub := f.venue(t, "Pub")
	cafe := f.venue(t, "Cafe")

	notes := "  Bring dice  "
	g, err := f.svc.CreateGame(ctx, admin, schedule.GameInput{VenueID: pub.ID, Day: "Thursday", Time: "7:30", Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, g.Day)
	assert.Equal(t, "07:30:00", g.StartTime)
	require.NotNil(t, g.Notes)
	assert.Equal(t, "Bring dice", *g.Notes)
	assert.Equal(t, "Pub", g.VenueName)
	assert.Equal(t, "1 Main St, Springfield, IL 62701", g.VenueAddress)

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			name  string
			in    schedule.GameInput
			field string
		}{
			{"zero venue", schedule.GameInput{Day: "Monday", Time: "19:00"}, "venueId"},
			{"bad day", schedule.GameInput{VenueID: pub.ID, Day: "Funday", Time: "19:00"}, "gameDay"},
			{"missing time", schedule.GameInput{VenueID: pub.ID, Day: "Monday"}, "gameTime"},
			{"out of range time", schedule.GameInput{VenueID: pub.ID, Day: "Monday", Time: "25:00"}, "gameTime"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.CreateGame(ctx, admin, tt.in)
				errutil.AssertKind(t, err, errutil.KindValidation)
				e, ok := errutil.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.field, e.Field)
			})
		}
	})

	_, err = f.svc.CreateGame(ctx, admin, schedule.GameInput{VenueID: ulid.Make(), Day: "Monday", Time: "19:00"})
	assert.ErrorIs(t, err, schedule.ErrVenueNotFound)

	blank := "   "
	moved, err := f.svc.UpdateGame(ctx, admin, g.ID, schedule.GameInput{VenueID: cafe.ID, Day: "Monday", Time: "18:00:00", Notes: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Cafe", moved.VenueName)
	assert.Equal(t, time.Monday, moved.Day)
	assert.Nil(t, moved.Notes)

	monday := time.Monday
	games, err := f.svc.ListGames(ctx, schedule.GameFilter{Day: &monday, VenueID: &cafe.ID})
	require.NoError(t, err)
	require.Len(t, games, 1)

	require.NoError(t, f.svc.DeleteGame(ctx, admin, g.ID))
	_, err = f.svc.GetGame(ctx, g.ID)
	errutil.AssertKind(t, err, errutil.KindNotFound)
	err = f.svc.DeleteGame(ctx, admin, g.ID)
	assert.ErrorIs(t, err, schedule.ErrGameNotFound)
}

func TestService_Standings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.account(t, "Ada", "Lovelace")
	alan := f.account(t, "Alan", "Turing")
	grace := f.account(t, "Grace", "Hopper")

	f.store.SetStanding(ada.ID, "2026-Q1", 30, 3)
	f.store.SetStanding(alan.ID, "2026-Q1", 30, 5)
	f.store.SetStanding(grace.ID, "2026-Q1", 10, 1)
	f.store.SetStanding(ada.ID, "2025-Q4", 50, 4)

	list, periods, err := f.svc.Standings(ctx, "2026-Q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-Q1"}, periods)
	require.Len(t, list, 3)
	assert.Equal(t, "Alan Turing", list[0].DisplayName)
	assert.Equal(t, 1, list[0].Rank)
	assert.Equal(t, "Ada Lovelace", list[1].DisplayName)
	assert.Equal(t, 2, list[1].Rank)
	assert.Equal(t, 3, list[2].Rank)

	all, periods, err := f.svc.Standings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, []string{"2025-Q4", "2026-Q1"}, periods)
	assert.Equal(t, 50, all[0].Points)
	assert.Equal(t, 1, all[0].Rank)

	none, periods, err := f.svc.Standings(ctx, "1999-Q1")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, []string{"1999-Q1"}, periods)
}

func TestNewService_RequiresRepositories(t *testing.T) {
	_, err := schedule.NewService(nil, nil, nil, nil)
	require.Error(t, err)
	_, err = schedule.NewSignupService(nil, nil, nil)
	require.Error(t, err)
}
