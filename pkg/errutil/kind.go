// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package errutil defines the error taxonomy shared by every GameNight
// component and helpers for logging and asserting on errors.
//
// Domain errors are *Error values carrying a Kind, an optional Field and a
// message that is safe to show to the caller. They are usually wrapped with
// samber/oops to attach a stable code and structured context:
//
//	return oops.Code("SIGNUP_OTHER_GAME").
//		With("game_id", gameID.String()).
//		Wrap(errutil.Conflict("already signed up for another event"))
//
// errors.Is(err, errutil.ErrConflict) and KindOf(err) see through the
// wrapping.
package errutil

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Kind classifies a domain error.
type Kind string

// Error kinds.
const (
	KindUnknown        Kind = ""
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindConflict       Kind = "conflict"
	KindTokenInvalid   Kind = "token_invalid"
	KindNotFound       Kind = "not_found"
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrConflict       = errors.New("conflict")
	ErrTokenInvalid   = errors.New("invalid or expired token")
	ErrNotFound       = errors.New("not found")
)

var sentinels = map[Kind]error{
	KindValidation:     ErrValidation,
	KindAuthentication: ErrAuthentication,
	KindAuthorization:  ErrAuthorization,
	KindConflict:       ErrConflict,
	KindTokenInvalid:   ErrTokenInvalid,
	KindNotFound:       ErrNotFound,
}

// Error is a classified domain error.
type Error struct {
	Kind    Kind
	Field   string // set for validation errors
	Message string
}

// Error returns the caller-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// Validation returns a validation error for a single input field.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Authentication returns an authentication error.
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Authorization returns an authorization error.
func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// Conflict returns a conflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// TokenInvalid returns the single error used for unknown, expired and
// already-used tokens. The message never varies.
func TokenInvalid() *Error {
	return &Error{Kind: KindTokenInvalid, Message: "Invalid or expired token"}
}

// NotFound returns a not-found error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Code returns the oops code attached to err, or "" if there is none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := oopsErr.Code()
	if code == nil {
		return ""
	}
	return fmt.Sprint(code)
}
