// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package postgres provides PostgreSQL implementations of the schedule
// repositories.
package postgres
