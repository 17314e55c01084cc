// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/gamenight/gamenight/internal/auth"
	authpg "github.com/gamenight/gamenight/internal/auth/postgres"
	"github.com/gamenight/gamenight/internal/config"
	"github.com/gamenight/gamenight/internal/schedule"
	schedpg "github.com/gamenight/gamenight/internal/schedule/postgres"
	"github.com/gamenight/gamenight/internal/store"
	"github.com/gamenight/gamenight/internal/web"
)

// repositories groups the PostgreSQL repositories over one pool.
type repositories struct {
	accounts      *authpg.AccountRepository
	verifications *authpg.VerificationTokenRepository
	resets        *authpg.PasswordResetTokenRepository
	venues        *schedpg.VenueRepository
	games         *schedpg.GameRepository
	signups       *schedpg.SignupRepository
	standings     *schedpg.StandingRepository
	tx            *store.Transactor
}

func newRepositories(db store.Pool) *repositories {
	return &repositories{
		accounts:      authpg.NewAccountRepository(db),
		verifications: authpg.NewVerificationTokenRepository(db),
		resets:        authpg.NewPasswordResetTokenRepository(db),
		venues:        schedpg.NewVenueRepository(db),
		games:         schedpg.NewGameRepository(db),
		signups:       schedpg.NewSignupRepository(db),
		standings:     schedpg.NewStandingRepository(db),
		tx:            store.NewTransactor(db),
	}
}

func (r *repositories) tokenService() (*auth.TokenService, error) {
	return auth.NewTokenService(r.accounts, r.verifications, r.resets, r.tx)
}

// newAPIConfig builds the services behind the HTTP API.
func newAPIConfig(cfg *config.Config, repos *repositories, notifier auth.Notifier, logger *slog.Logger) (web.Config, error) {
	creds, err := auth.NewCredentials(repos.accounts, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return web.Config{}, oops.Code("WIRING_FAILED").With("component", "credentials").Wrap(err)
	}
	tokens, err := repos.tokenService()
	if err != nil {
		return web.Config{}, oops.Code("WIRING_FAILED").With("component", "tokens").Wrap(err)
	}
	sessions, err := auth.NewSessionIssuer([]byte(cfg.Session.Secret), cfg.Session.Issuer, cfg.Session.TTL())
	if err != nil {
		return web.Config{}, oops.Code("WIRING_FAILED").With("component", "sessions").Wrap(err)
	}
	svc, err := auth.NewService(auth.ServiceConfig{
		Accounts:    repos.accounts,
		Credentials: creds,
		Tokens:      tokens,
		Sessions:    sessions,
		Transactor:  repos.tx,
		Notifier:    notifier,
		Links:       auth.Links{APIURL: cfg.Links.APIURL, FrontendURL: cfg.Links.FrontendURL},
		Logger:      logger,
	})
	if err != nil {
		return web.Config{}, oops.Code("WIRING_FAILED").With("component", "auth").Wrap(err)
	}
	admin, err := auth.NewAdminService(repos.accounts, logger)
	if err != nil {
		return web.Config{}, oops.Code("WIRING_FAILED").With("component", "admin").Wrap(err)
	}
	sched, err := schedule.NewService(repos.venues, repos.games, repos.standings, logger)
	if err != nil {
		return web.Config{}, oops.Code("WIRING_FAILED").With("component", "schedule").Wrap(err)
	}
	signups, err := schedule.NewSignupService(repos.games, repos.signups, logger)
	if err != nil {
		return web.Config{}, oops.Code("WIRING_FAILED").With("component", "signups").Wrap(err)
	}

	return web.Config{
		Auth:        svc,
		Admin:       admin,
		Sessions:    sessions,
		Schedule:    sched,
		Signups:     signups,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Logger:      logger,
	}, nil
}
