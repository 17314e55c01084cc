// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package web

import (
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/pkg/errutil"
)

var venueFields = []string{"name", "street", "city", "state", "zip"}

var gameFields = []string{"venueId", "gameDay", "gameTime"}

func (a *api) listVenues(w http.ResponseWriter, r *http.Request) {
	list, err := a.schedule.ListVenues(r.Context())
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	venues := make([]venueJSON, 0, len(list))
	for _, v := range list {
		venues = append(venues, toVenue(v))
	}
	writeJSON(w, http.StatusOK, struct {
		Venues []venueJSON `json:"venues"`
	}{venues})
}

func (a *api) createVenue(w http.ResponseWriter, r *http.Request) {
	var in schedule.VenueInput
	if err := decodeBody(r, &in, venueFields...); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	venue, err := a.schedule.CreateVenue(r.Context(), auth.ClaimsFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeVenue(w, http.StatusCreated, venue)
}

func (a *api) updateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "venue")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	var in schedule.VenueInput
	if err := decodeBody(r, &in, venueFields...); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	venue, err := a.schedule.UpdateVenue(r.Context(), auth.ClaimsFromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeVenue(w, http.StatusOK, venue)
}

func (a *api) deleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "venue")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.schedule.DeleteVenue(r.Context(), auth.ClaimsFromContext(r.Context()), id); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeVenue(w http.ResponseWriter, status int, v *schedule.Venue) {
	writeJSON(w, status, struct {
		Venue venueJSON `json:"venue"`
	}{toVenue(v)})
}

// listGames accepts optional day (weekday name) and venueId filters.
func (a *api) listGames(w http.ResponseWriter, r *http.Request) {
	filter, err := gameFilter(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	list, err := a.schedule.ListGames(r.Context(), filter)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	games := make([]gameJSON, 0, len(list))
	for _, g := range list {
		games = append(games, toGame(g))
	}
	writeJSON(w, http.StatusOK, struct {
		Games []gameJSON `json:"games"`
	}{games})
}

func gameFilter(r *http.Request) (schedule.GameFilter, error) {
	var f schedule.GameFilter
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("day")); raw != "" {
		day, err := schedule.ParseDay(raw)
		if err != nil {
			return f, oops.Code("GAME_FILTER_INVALID").With("day", raw).Wrap(errutil.Validation("day", "Invalid day filter"))
		}
		f.Day = &day
	}
	if raw := strings.TrimSpace(q.Get("venueId")); raw != "" {
		id, err := ulid.Parse(raw)
		if err != nil {
			return f, oops.Code("GAME_FILTER_INVALID").With("venue_id", raw).Wrap(errutil.Validation("venueId", "Invalid venue id"))
		}
		f.VenueID = &id
	}
	return f, nil
}

func (a *api) createGame(w http.ResponseWriter, r *http.Request) {
	in, err := decodeGame(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	game, err := a.schedule.CreateGame(r.Context(), auth.ClaimsFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeGame(w, http.StatusCreated, game)
}

func (a *api) updateGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "game")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	in, err := decodeGame(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	game, err := a.schedule.UpdateGame(r.Context(), auth.ClaimsFromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeGame(w, http.StatusOK, game)
}

func (a *api) deleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "game")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.schedule.DeleteGame(r.Context(), auth.ClaimsFromContext(r.Context()), id); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeGame(r *http.Request) (schedule.GameInput, error) {
	var body gameRequest
	if err := decodeBody(r, &body, gameFields...); err != nil {
		return schedule.GameInput{}, err
	}
	venueID, err := ulid.Parse(strings.TrimSpace(body.VenueID))
	if err != nil {
		return schedule.GameInput{}, oops.Code("GAME_INVALID").
			With("venue_id", body.VenueID).
			Wrap(errutil.Validation("venueId", "Invalid venue id"))
	}
	return schedule.GameInput{
		VenueID: venueID,
		Day:     body.GameDay,
		Time:    body.GameTime,
		Notes:   body.Notes,
	}, nil
}

func writeGame(w http.ResponseWriter, status int, g *schedule.GameDetail) {
	writeJSON(w, status, struct {
		Game gameJSON `json:"game"`
	}{toGame(g)})
}

func (a *api) mySignup(w http.ResponseWriter, r *http.Request) {
	accountID, err := sessionAccount(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	detail, err := a.signups.ActiveSignupDetail(r.Context(), accountID)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMySignup(detail))
}

func (a *api) signup(w http.ResponseWriter, r *http.Request) {
	gameID, accountID, err := signupTarget(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if _, err := a.signups.Signup(r.Context(), accountID, gameID); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Signed up successfully")
}

func (a *api) removeSignup(w http.ResponseWriter, r *http.Request) {
	gameID, accountID, err := signupTarget(r)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	if err := a.signups.RemoveSignup(r.Context(), accountID, gameID); err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listSignups(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r, "id", "game")
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	list, err := a.signups.ListSignups(r.Context(), gameID)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	signups := make([]participantJSON, 0, len(list))
	for _, p := range list {
		signups = append(signups, participantJSON{
			SignedUpAt:  p.SignedUpAt,
			UserID:      p.AccountID.String(),
			DisplayName: p.DisplayName,
			Email:       p.Email,
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Signups []participantJSON `json:"signups"`
	}{signups})
}

// standings lists ranked standings for the period query parameter, or for
// every period when it is absent.
func (a *api) standings(w http.ResponseWriter, r *http.Request) {
	list, periods, err := a.schedule.Standings(r.Context(), strings.TrimSpace(r.URL.Query().Get("period")))
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	standings := make([]standingJSON, 0, len(list))
	for _, s := range list {
		standings = append(standings, standingJSON{
			Rank:        s.Rank,
			UserID:      s.AccountID.String(),
			DisplayName: s.DisplayName,
			Points:      s.Points,
			Wins:        s.Wins,
			Period:      s.Period,
		})
	}
	if periods == nil {
		periods = []string{}
	}
	writeJSON(w, http.StatusOK, struct {
		Standings []standingJSON `json:"standings"`
		Periods   []string       `json:"periods"`
	}{standings, periods})
}

func signupTarget(r *http.Request) (gameID, accountID ulid.ULID, err error) {
	if gameID, err = pathID(r, "id", "game"); err != nil {
		return gameID, accountID, err
	}
	accountID, err = sessionAccount(r)
	return gameID, accountID, err
}

func sessionAccount(r *http.Request) (ulid.ULID, error) {
	claims := auth.ClaimsFromContext(r.Context())
	if err := auth.RequireSession(claims); err != nil {
		return ulid.ULID{}, err
	}
	return claims.AccountID()
}
