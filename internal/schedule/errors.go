// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule

import "github.com/gamenight/gamenight/pkg/errutil"

// Errors returned by repositories and services. Each also matches its
// errutil kind sentinel under errors.Is.
var (
	ErrVenueNotFound  = errutil.NotFound("Venue not found")
	ErrGameNotFound   = errutil.NotFound("Game not found")
	ErrSignupNotFound = errutil.NotFound("Signup not found")
	ErrNoActiveSignup = errutil.NotFound("Not signed up for any game")

	ErrVenueNameTaken = errutil.Conflict("A venue with that name already exists")
	ErrVenueInUse     = errutil.Conflict("Venue still has games scheduled")

	// ErrSignupExists is returned by SignupRepository.Create when the
	// account already holds a signup.
	ErrSignupExists = errutil.Conflict("Already signed up")

	ErrSignedUpElsewhere = errutil.Conflict("You are already signed up for another game. Remove that signup first.")
	ErrAlreadySignedUp   = errutil.Conflict("Already signed up for this game")
)
