// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// RequireSession rejects a request that carries no validated session.
func RequireSession(c *Claims) error {
	if c == nil {
		return oops.Code("SESSION_MISSING").Wrap(errutil.Authentication("Missing or invalid token"))
	}
	return nil
}

// RequireRole rejects a session whose role is not role. Only the claims are
// consulted; a role change takes effect at the next login.
func RequireRole(c *Claims, role Role) error {
	if err := RequireSession(c); err != nil {
		return err
	}
	if c.Role != role {
		return oops.Code("ROLE_REQUIRED").
			With("required", string(role)).
			With("actual", string(c.Role)).
			Wrap(errutil.Authorization("Admin only"))
	}
	return nil
}
