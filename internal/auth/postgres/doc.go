// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package postgres provides PostgreSQL implementations of auth repositories.
//
// Every repository runs its statements on the transaction carried by the
// context when there is one (see store.Conn), so callers compose multi-step
// flows with store.Transactor.
package postgres
