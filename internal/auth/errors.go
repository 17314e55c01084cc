// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import "github.com/gamenight/gamenight/pkg/errutil"

// Errors returned by repositories. Each also matches its errutil kind
// sentinel under errors.Is.
var (
	ErrAccountNotFound    = errutil.NotFound("User not found")
	ErrEmailTaken         = errutil.Conflict("Email already registered")
	ErrTokenNotRedeemable = errutil.TokenInvalid()
)
