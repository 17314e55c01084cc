// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import (
	"strings"

	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// MinPasswordLength is the shortest password the policy accepts.
const MinPasswordLength = 8

// ValidatePassword applies the password policy and reports the first rule
// that fails, attributed to field.
func ValidatePassword(field, password string) error {
	var msg string
	switch {
	case len(password) < MinPasswordLength:
		msg = "Password must be at least 8 characters"
	case !strings.ContainsFunc(password, isASCIIUpper):
		msg = "Password must contain at least one uppercase letter"
	case !strings.ContainsFunc(password, isASCIILower):
		msg = "Password must contain at least one lowercase letter"
	case !strings.ContainsFunc(password, isASCIIDigit):
		msg = "Password must contain at least one number"
	default:
		return nil
	}
	return oops.Code("PASSWORD_POLICY").Wrap(errutil.Validation(field, "%s", msg))
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
