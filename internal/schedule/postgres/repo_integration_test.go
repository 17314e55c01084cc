// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/gamenight/gamenight/internal/auth"
	authpg "github.com/gamenight/gamenight/internal/auth/postgres"
	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/internal/schedule/postgres"
	"github.com/gamenight/gamenight/internal/store"
)

var _ = Describe("Schedule repositories", func() {
	var (
		ctx      context.Context
		accounts *authpg.AccountRepository
		venues   *postgres.VenueRepository
		games    *postgres.GameRepository
		signups  *postgres.SignupRepository
		svc      *schedule.SignupService
	)

	newAccount := func(first string) *auth.Account {
		a := &auth.Account{
			ID:           ulid.Make(),
			Email:        ulid.Make().String() + "@x.com",
			PasswordHash: "h",
			FirstName:    first,
			LastName:     "Player",
			Role:         auth.RoleMember,
			Status:       auth.StatusActive,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		Expect(accounts.Create(ctx, a)).To(Succeed())
		return a
	}

	newVenue := func() *schedule.Venue {
		v := &schedule.Venue{
			ID:     ulid.Make(),
			Name:   "Venue " + ulid.Make().String(),
			Street: "1 Main St",
			City:   "Springfield",
			State:  "IL",
			Zip:    "62701",
		}
		Expect(venues.Create(ctx, v)).To(Succeed())
		return v
	}

	newGame := func(v *schedule.Venue, day time.Weekday) *schedule.Game {
		g := &schedule.Game{ID: ulid.Make(), VenueID: v.ID, Day: day, StartTime: "19:00:00"}
		Expect(games.Create(ctx, g)).To(Succeed())
		return g
	}

	BeforeEach(func() {
		ctx = context.Background()
		accounts = authpg.NewAccountRepository(testPool)
		venues = postgres.NewVenueRepository(testPool)
		games = postgres.NewGameRepository(testPool)
		signups = postgres.NewSignupRepository(testPool)

		var err error
		svc, err = schedule.NewSignupService(games, signups, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("venues", func() {
		It("round-trips and enforces unique names", func() {
			v := newVenue()

			got, err := venues.Get(ctx, v.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Address()).To(Equal("1 Main St, Springfield, IL 62701"))
			Expect(got.CreatedAt).NotTo(BeZero())

			dup := *v
			dup.ID = ulid.Make()
			Expect(venues.Create(ctx, &dup)).To(MatchError(schedule.ErrVenueNameTaken))
		})

		It("refuses to delete a venue with games", func() {
			v := newVenue()
			g := newGame(v, time.Monday)

			Expect(venues.Delete(ctx, v.ID)).To(MatchError(schedule.ErrVenueInUse))
			Expect(games.Delete(ctx, g.ID)).To(Succeed())
			Expect(venues.Delete(ctx, v.ID)).To(Succeed())
			Expect(venues.Delete(ctx, v.ID)).To(MatchError(schedule.ErrVenueNotFound))
		})
	})

	Describe("games", func() {
		It("filters by day and venue and joins the venue", func() {
			v := newVenue()
			notes := "Bring dice"
			g := &schedule.Game{ID: ulid.Make(), VenueID: v.ID, Day: time.Saturday, StartTime: "10:30:00", Notes: &notes}
			Expect(games.Create(ctx, g)).To(Succeed())

			day := time.Saturday
			list, err := games.List(ctx, schedule.GameFilter{Day: &day, VenueID: &v.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].VenueName).To(Equal(v.Name))
			Expect(*list[0].Notes).To(Equal("Bring dice"))
		})

		It("reports an unknown venue", func() {
			g := &schedule.Game{ID: ulid.Make(), VenueID: ulid.Make(), Day: time.Monday, StartTime: "19:00:00"}
			Expect(games.Create(ctx, g)).To(MatchError(schedule.ErrVenueNotFound))
		})
	})

	Describe("signups", func() {
		It("keeps one signup per account and cascades game deletion", func() {
			v := newVenue()
			g1, g2 := newGame(v, time.Tuesday), newGame(v, time.Thursday)
			a := newAccount("Ada")

			_, err := svc.Signup(ctx, a.ID, g1.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Signup(ctx, a.ID, g2.ID)
			Expect(err).To(MatchError(schedule.ErrSignedUpElsewhere))

			detail, err := svc.ActiveSignupDetail(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.ID).To(Equal(g1.ID))

			list, err := svc.ListSignups(ctx, g1.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].DisplayName).To(Equal("Ada Player"))

			Expect(games.Delete(ctx, g1.ID)).To(Succeed())
			active, err := svc.GetActiveSignup(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeNil())
		})

		It("lets exactly one of many concurrent signups win", func() {
			v := newVenue()
			a := newAccount("Grace")
			const n = 12
			ids := make([]ulid.ULID, n)
			for i := range ids {
				ids[i] = newGame(v, time.Weekday(i%7)).ID
			}

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				wins      int
				conflicts int
			)
			for _, id := range ids {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := svc.Signup(ctx, a.ID, id)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						wins++
					case errors.Is(err, schedule.ErrSignedUpElsewhere):
						conflicts++
					default:
						Fail("unexpected signup error: " + err.Error())
					}
				}()
			}
			wg.Wait()

			Expect(wins).To(Equal(1))
			Expect(conflicts).To(Equal(n - 1))

			var count int
			Expect(testPool.QueryRow(ctx, `SELECT count(*) FROM game_signups WHERE account_id = $1`, a.ID.String()).Scan(&count)).To(Succeed())
			Expect(count).To(Equal(1))
		})

		It("rolls back with the surrounding transaction", func() {
			v := newVenue()
			g := newGame(v, time.Friday)
			a := newAccount("Alan")

			err := store.NewTransactor(testPool).InTransaction(ctx, func(ctx context.Context) error {
				if _, err := svc.Signup(ctx, a.ID, g.ID); err != nil {
					return err
				}
				return errors.New("abort")
			})
			Expect(err).To(MatchError("abort"))

			active, err := svc.GetActiveSignup(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeNil())
		})
	})

	Describe("standings", func() {
		It("orders by points then wins", func() {
			a, b := newAccount("Ada"), newAccount("Alan")
			period := "P-" + ulid.Make().String()
			_, err := testPool.Exec(ctx, `
				INSERT INTO player_standings (account_id, period, points, wins)
				VALUES ($1, $3, 20, 1), ($2, $3, 20, 4)
			`, a.ID.String(), b.ID.String(), period)
			Expect(err).NotTo(HaveOccurred())

			list, err := postgres.NewStandingRepository(testPool).List(ctx, period)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].AccountID).To(Equal(b.ID))
			Expect(list[1].DisplayName).To(Equal("Ada Player"))
		})
	})
})
