// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package schedule manages venues, the weekly games held at them, player
// signups and league standings.
//
// SignupService guards the signup invariant: an account holds at most one
// signup at a time. The service checks first for a friendly error, but the
// storage UNIQUE constraint on the signup's account decides races; a
// violation is reported as the same Conflict a sequential caller would see.
package schedule
