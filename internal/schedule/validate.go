// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

var zipRegex = regexp.MustCompile(`^\d{5}$`)

// VenueInput is the input to CreateVenue and UpdateVenue.
type VenueInput struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

func (in *VenueInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Zip = strings.TrimSpace(in.Zip)
}

// Validate checks that every field is present and zip has five digits.
func (in VenueInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("Name is required")),
		validation.Field(&in.Street, validation.Required.Error("Street is required")),
		validation.Field(&in.City, validation.Required.Error("City is required")),
		validation.Field(&in.State, validation.Required.Error("State is required")),
		validation.Field(&in.Zip,
			validation.Required.Error("Zip is required"),
			validation.Match(zipRegex).Error("Zip must be 5 digits")),
	)
	return firstFieldError(err, "name", "street", "city", "state", "zip")
}

// GameInput is the input to CreateGame and UpdateGame.
type GameInput struct {
	VenueID ulid.ULID `json:"venueId"`
	Day     string    `json:"gameDay"`
	Time    string    `json:"gameTime"`
	Notes   *string   `json:"notes"`
}

// Validate checks the venue, weekday name and time of day.
func (in GameInput) Validate() error {
	days := make([]any, 0, len(dayNames))
	for name := range dayNames {
		days = append(days, name)
	}
	in.Day = strings.TrimSpace(in.Day)
	in.Time = strings.TrimSpace(in.Time)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.VenueID, validation.By(requireID)),
		validation.Field(&in.Day,
			validation.Required.Error("Valid gameDay (Sunday–Saturday) is required"),
			validation.In(days...).Error("Valid gameDay (Sunday–Saturday) is required")),
		validation.Field(&in.Time,
			validation.Required.Error("Valid gameTime (HH:mm) is required"),
			validation.Match(timeRegex).Error("Valid gameTime (HH:mm) is required")),
	)
	return firstFieldError(err, "venueId", "gameDay", "gameTime")
}

func requireID(v any) error {
	if id, _ := v.(ulid.ULID); id.IsZero() {
		return errors.New("Invalid venue id")
	}
	return nil
}

// toGame converts validated input into a Game.
func (in GameInput) toGame() (*Game, error) {
	day, err := ParseDay(in.Day)
	if err != nil {
		return nil, err
	}
	start, err := NormalizeTime(in.Time)
	if err != nil {
		return nil, err
	}
	var notes *string
	if in.Notes != nil {
		if n := strings.TrimSpace(*in.Notes); n != "" {
			notes = &n
		}
	}
	return &Game{VenueID: in.VenueID, Day: day, StartTime: start, Notes: notes}, nil
}

// firstFieldError reduces ozzo's per-field map to the first failing field in
// order, as an errutil validation error.
func firstFieldError(err error, order ...string) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return oops.Code("VALIDATION_INTERNAL").Wrap(err)
	}
	for _, field := range order {
		if ferr, ok := errs[field]; ok && ferr != nil {
			return errutil.Validation(field, "%s", ferr.Error())
		}
	}
	return errutil.Validation("", "%s", errs.Error())
}
