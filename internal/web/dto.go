// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package web

import (
	"time"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
)

type userJSON struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

func toUser(a *auth.Account) userJSON {
	return userJSON{
		ID:          a.ID.String(),
		Email:       a.Email,
		DisplayName: a.DisplayName(),
		Role:        string(a.Role),
		FirstName:   a.FirstName,
		LastName:    a.LastName,
	}
}

// adminUserJSON is a row of the admin user list.
type adminUserJSON struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func toAdminUser(a *auth.Account) adminUserJSON {
	return adminUserJSON{
		ID:              a.ID.String(),
		Email:           a.Email,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Role:            string(a.Role),
		Status:          string(a.Status),
		EmailVerifiedAt: a.EmailVerifiedAt,
		CreatedAt:       a.CreatedAt,
	}
}

type venueJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

func toVenue(v *schedule.Venue) venueJSON {
	return venueJSON{
		ID:     v.ID.String(),
		Name:   v.Name,
		Street: v.Street,
		City:   v.City,
		State:  v.State,
		Zip:    v.Zip,
	}
}

type gameJSON struct {
	ID           string  `json:"id"`
	VenueID      string  `json:"venueId"`
	GameDay      string  `json:"gameDay"`
	GameTime     string  `json:"gameTime"`
	Notes        *string `json:"notes,omitempty"`
	VenueName    string  `json:"venueName"`
	VenueAddress string  `json:"venueAddress"`
}

func toGame(g *schedule.GameDetail) gameJSON {
	return gameJSON{
		ID:           g.ID.String(),
		VenueID:      g.VenueID.String(),
		GameDay:      g.Day.String(),
		GameTime:     schedule.FormatTime(g.StartTime),
		Notes:        g.Notes,
		VenueName:    g.VenueName,
		VenueAddress: g.VenueAddress,
	}
}

type mySignupJSON struct {
	GameID       string    `json:"gameId"`
	GameDay      string    `json:"gameDay"`
	GameTime     string    `json:"gameTime"`
	Notes        *string   `json:"notes,omitempty"`
	VenueName    string    `json:"venueName"`
	VenueAddress string    `json:"venueAddress"`
	SignedUpAt   time.Time `json:"signedUpAt"`
}

func toMySignup(d *schedule.SignupDetail) mySignupJSON {
	return mySignupJSON{
		GameID:       d.ID.String(),
		GameDay:      d.Day.String(),
		GameTime:     schedule.FormatTime(d.StartTime),
		Notes:        d.Notes,
		VenueName:    d.VenueName,
		VenueAddress: d.VenueAddress,
		SignedUpAt:   d.SignedUpAt,
	}
}

type participantJSON struct {
	SignedUpAt  time.Time `json:"signedUpAt"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
}

type standingJSON struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Points      int    `json:"points"`
	Wins        int    `json:"wins"`
	Period      string `json:"period"`
}

// gameRequest is the body of POST /games and PATCH /games/{id}. The venue
// ID is parsed separately so a malformed one is a field error.
type gameRequest struct {
	VenueID  string  `json:"venueId"`
	GameDay  string  `json:"gameDay"`
	GameTime string  `json:"gameTime"`
	Notes    *string `json:"notes"`
}
