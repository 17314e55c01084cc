// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package memstore implements the auth and schedule repositories in memory.
//
// A single mutex serializes every operation. InTransaction holds it for the
// whole callback and restores a snapshot when the callback fails, so the
// uniqueness and atomicity rules match the PostgreSQL repositories.
package memstore

import (
	"context"
	"maps"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/schedule"
)

type txKey struct{}

type state struct {
	accounts      map[ulid.ULID]auth.Account
	verifications map[string]auth.VerificationToken
	resets        map[string]auth.PasswordResetToken
	venues        map[ulid.ULID]schedule.Venue
	games         map[ulid.ULID]schedule.Game
	signups       map[ulid.ULID]schedule.Signup
	standings     map[standingKey]standingRow
}

type standingKey struct {
	accountID ulid.ULID
	period    string
}

type standingRow struct {
	points int
	wins   int
}

func (s *state) clone() *state {
	return &state{
		accounts:      maps.Clone(s.accounts),
		verifications: maps.Clone(s.verifications),
		resets:        maps.Clone(s.resets),
		venues:        maps.Clone(s.venues),
		games:         maps.Clone(s.games),
		signups:       maps.Clone(s.signups),
		standings:     maps.Clone(s.standings),
	}
}

// Store holds every table.
type Store struct {
	mu sync.Mutex
	st *state
}

// New returns an empty Store.
func New() *Store {
	return &Store{st: &state{
		accounts:      make(map[ulid.ULID]auth.Account),
		verifications: make(map[string]auth.VerificationToken),
		resets:        make(map[string]auth.PasswordResetToken),
		venues:        make(map[ulid.ULID]schedule.Venue),
		games:         make(map[ulid.ULID]schedule.Game),
		signups:       make(map[ulid.ULID]schedule.Signup),
		standings:     make(map[standingKey]standingRow),
	}}
}

// InTransaction runs fn with the store locked. Changes made by fn are
// discarded when it returns an error. Nested calls join the outer
// transaction.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn against the current state, taking the lock unless ctx already
// holds it.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// SetStanding records a player's standing for a period. Standings are
// maintained outside the application; tests use this to seed them.
func (s *Store) SetStanding(accountID ulid.ULID, period string, points, wins int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.standings[standingKey{accountID, period}] = standingRow{points: points, wins: wins}
}

// Accounts returns the account repository.
func (s *Store) Accounts() auth.AccountRepository { return &accountRepo{s} }

// VerificationTokens returns the verification token repository.
func (s *Store) VerificationTokens() auth.VerificationTokenRepository { return &verificationRepo{s} }

// PasswordResetTokens returns the password reset token repository.
func (s *Store) PasswordResetTokens() auth.PasswordResetTokenRepository { return &resetRepo{s} }

// Venues returns the venue repository.
func (s *Store) Venues() schedule.VenueRepository { return &venueRepo{s} }

// Games returns the game repository.
func (s *Store) Games() schedule.GameRepository { return &gameRepo{s} }

// Signups returns the signup repository.
func (s *Store) Signups() schedule.SignupRepository { return &signupRepo{s} }

// Standings returns the standing repository.
func (s *Store) Standings() schedule.StandingRepository { return &standingRepo{s} }
