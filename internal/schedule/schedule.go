// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// Venue is a place where games are held.
type Venue struct {
	ID        ulid.ULID
	Name      string
	Street    string
	City      string
	State     string
	Zip       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address formats the venue as "street, city, state zip".
func (v *Venue) Address() string {
	return FormatAddress(v.Street, v.City, v.State, v.Zip)
}

// FormatAddress joins the non-empty address parts.
func FormatAddress(street, city, state, zip string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{street, city, strings.TrimSpace(state + " " + zip)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Game is a weekly game night at a venue.
type Game struct {
	ID        ulid.ULID
	VenueID   ulid.ULID
	Day       time.Weekday
	StartTime string // HH:MM:SS
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameDetail is a game joined with its venue.
type GameDetail struct {
	Game
	VenueName    string
	VenueAddress string
}

// Signup records that an account plans to attend a game.
type Signup struct {
	ID         ulid.ULID
	GameID     ulid.ULID
	AccountID  ulid.ULID
	SignedUpAt time.Time
}

// SignupDetail is an account's signup joined with the game and venue.
type SignupDetail struct {
	GameDetail
	SignedUpAt time.Time
}

// Participant is one signup on a game's list.
type Participant struct {
	AccountID   ulid.ULID
	DisplayName string
	Email       string
	SignedUpAt  time.Time
}

// Standing is a player's league record for a period.
type Standing struct {
	Rank        int
	AccountID   ulid.ULID
	DisplayName string
	Period      string
	Points      int
	Wins        int
}

// GameFilter narrows ListGames. Nil fields match everything.
type GameFilter struct {
	Day     *time.Weekday
	VenueID *ulid.ULID
}

// VenueRepository persists venues. Create and Update return
// ErrVenueNameTaken on a duplicate name; Delete returns ErrVenueInUse while
// games reference the venue.
type VenueRepository interface {
	List(ctx context.Context) ([]*Venue, error)
	Get(ctx context.Context, id ulid.ULID) (*Venue, error)
	Create(ctx context.Context, v *Venue) error
	Update(ctx context.Context, v *Venue) error
	Delete(ctx context.Context, id ulid.ULID) error
}

// GameRepository persists games. Create and Update return ErrVenueNotFound
// when the venue does not exist.
type GameRepository interface {
	// List returns games ordered by weekday then start time.
	List(ctx context.Context, f GameFilter) ([]*GameDetail, error)
	Get(ctx context.Context, id ulid.ULID) (*GameDetail, error)
	Create(ctx context.Context, g *Game) error
	Update(ctx context.Context, g *Game) error
	Delete(ctx context.Context, id ulid.ULID) error
}

// SignupRepository persists signups.
type SignupRepository interface {
	// Create inserts the signup. ErrSignupExists if the account already
	// holds one; ErrGameNotFound if the game does not exist.
	Create(ctx context.Context, s *Signup) error

	// GetByAccount returns the account's signup, or ErrNoActiveSignup.
	GetByAccount(ctx context.Context, accountID ulid.ULID) (*Signup, error)

	// Detail returns the account's signup with game and venue, or
	// ErrNoActiveSignup.
	Detail(ctx context.Context, accountID ulid.ULID) (*SignupDetail, error)

	// Delete removes the account's signup for the game, or ErrSignupNotFound.
	Delete(ctx context.Context, accountID, gameID ulid.ULID) error

	// ListByGame returns the game's participants in signup order.
	ListByGame(ctx context.Context, gameID ulid.ULID) ([]*Participant, error)
}

// StandingRepository reads league standings.
type StandingRepository interface {
	// List returns standings ordered by points then wins, both descending.
	// An empty period lists every period.
	List(ctx context.Context, period string) ([]*Standing, error)
}

var dayNames = map[string]time.Weekday{}

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		dayNames[d.String()] = d
	}
}

// ParseDay parses a weekday name, Sunday through Saturday.
func ParseDay(s string) (time.Weekday, error) {
	d, ok := dayNames[strings.TrimSpace(s)]
	if !ok {
		return 0, errutil.Validation("gameDay", "Valid gameDay (Sunday–Saturday) is required")
	}
	return d, nil
}

var timeRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// NormalizeTime accepts H:MM, HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeTime(s string) (string, error) {
	invalid := errutil.Validation("gameTime", "Valid gameTime (HH:mm) is required")

	m := timeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", invalid
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	if h > 23 || min > 59 || sec > 59 {
		return "", invalid
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, min, sec), nil
}

// FormatTime renders a stored HH:MM:SS time as "7:00 PM". Unparseable input
// is returned unchanged.
func FormatTime(hms string) string {
	t, err := time.Parse(time.TimeOnly, hms)
	if err != nil {
		return hms
	}
	return t.Format("3:04 PM")
}
