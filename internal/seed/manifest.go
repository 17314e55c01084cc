// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package seed loads a YAML manifest of initial data and applies it to the
// database without creating duplicates.
package seed

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
)

// SupportedVersions is the manifest format versions this build understands.
const SupportedVersions = "^1"

// Manifest is a seed.yaml file.
type Manifest struct {
	Version string  `yaml:"version" jsonschema:"minLength=1,description=Manifest format version (semver)"`
	Admin   *Admin  `yaml:"admin,omitempty" jsonschema:"description=Administrator account created verified"`
	Venues  []Venue `yaml:"venues,omitempty"`
	Games   []Game  `yaml:"games,omitempty"`
}

// Admin declares the initial administrator.
type Admin struct {
	Email     string `yaml:"email" jsonschema:"minLength=3"`
	Password  string `yaml:"password" jsonschema:"minLength=8"`
	FirstName string `yaml:"first_name" jsonschema:"minLength=1"`
	LastName  string `yaml:"last_name" jsonschema:"minLength=1"`
}

// Venue declares a venue. Names are unique.
type Venue struct {
	Name   string `yaml:"name" jsonschema:"minLength=1"`
	Street string `yaml:"street" jsonschema:"minLength=1"`
	City   string `yaml:"city" jsonschema:"minLength=1"`
	State  string `yaml:"state" jsonschema:"minLength=1"`
	Zip    string `yaml:"zip" jsonschema:"pattern=^[0-9]{5}$"`
}

// Game declares a weekly game at a venue named in the same manifest or
// already in the database.
type Game struct {
	Venue string `yaml:"venue" jsonschema:"minLength=1"`
	Day   string `yaml:"day" jsonschema:"enum=Sunday,enum=Monday,enum=Tuesday,enum=Wednesday,enum=Thursday,enum=Friday,enum=Saturday"`
	Time  string `yaml:"time" jsonschema:"pattern=^[0-9]?[0-9]:[0-9][0-9](:[0-9][0-9])?$"`
	Notes string `yaml:"notes,omitempty"`
}

// Parse decodes and validates a manifest. The data is checked against the
// JSON Schema first, then against the domain rules.
func Parse(data []byte) (*Manifest, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code("SEED_PARSE_FAILED").Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the version constraint and every entry.
func (m *Manifest) Validate() error {
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return oops.Code("SEED_VERSION_INVALID").With("version", m.Version).Wrap(err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.Code("SEED_VERSION_INVALID").Wrap(err)
	}
	if !c.Check(v) {
		return oops.Code("SEED_VERSION_UNSUPPORTED").
			With("version", m.Version).
			With("supported", SupportedVersions).
			Errorf("manifest version %s does not satisfy %s", m.Version, SupportedVersions)
	}

	if m.Admin != nil {
		if err := auth.ValidateEmail(auth.NormalizeEmail(m.Admin.Email)); err != nil {
			return oops.Code("SEED_ENTRY_INVALID").With("entry", "admin").Wrap(err)
		}
		if err := auth.ValidatePassword("password", m.Admin.Password); err != nil {
			return oops.Code("SEED_ENTRY_INVALID").With("entry", "admin").Wrap(err)
		}
	}

	names := make(map[string]bool, len(m.Venues))
	for i, v := range m.Venues {
		in := v.input()
		if err := in.Validate(); err != nil {
			return oops.Code("SEED_ENTRY_INVALID").With("entry", fmt.Sprintf("venues[%d]", i)).Wrap(err)
		}
		if names[in.Name] {
			return oops.Code("SEED_ENTRY_INVALID").
				With("entry", fmt.Sprintf("venues[%d]", i)).
				Errorf("duplicate venue name %q", in.Name)
		}
		names[in.Name] = true
	}

	for i, g := range m.Games {
		if _, err := schedule.ParseDay(g.Day); err != nil {
			return oops.Code("SEED_ENTRY_INVALID").With("entry", fmt.Sprintf("games[%d]", i)).Wrap(err)
		}
		if _, err := schedule.NormalizeTime(g.Time); err != nil {
			return oops.Code("SEED_ENTRY_INVALID").With("entry", fmt.Sprintf("games[%d]", i)).Wrap(err)
		}
	}
	return nil
}

func (v Venue) input() schedule.VenueInput {
	return schedule.VenueInput{Name: v.Name, Street: v.Street, City: v.City, State: v.State, Zip: v.Zip}
}
