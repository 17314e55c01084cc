// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package auth implements GameNight's account security core.
//
// # Building blocks
//
//   - Credentials: password policy, argon2id hashing (with verification of
//     legacy bcrypt hashes) and the Register/Authenticate/ChangePassword
//     operations on accounts.
//   - TokenService: single-use email verification and password reset tokens.
//     Only the sha256 of a token is stored.
//   - SessionIssuer: stateless HS256 session tokens. Validating one never
//     touches storage.
//   - RequireSession and RequireRole: the authorization gate applied to
//     protected operations.
//
// # Services
//
// Service composes the building blocks into the account flows (register,
// verify, login, password reset, profile) and AdminService into user
// management. Both return errutil domain errors wrapped with oops codes.
package auth
