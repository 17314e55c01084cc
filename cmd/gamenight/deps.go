// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/config"
	"github.com/gamenight/gamenight/internal/mail"
	"github.com/gamenight/gamenight/internal/observability"
	"github.com/gamenight/gamenight/internal/store"
	"github.com/gamenight/gamenight/internal/web"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// DatabaseFactory opens the connection pool.
	// Default: store.Connect
	DatabaseFactory func(ctx context.Context, url string, opts store.ConnectOptions) (Database, error)

	// MigratorFactory opens a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// NotifierFactory creates the mail notifier.
	// Default: mail.NewSMTPNotifier, or mail.NewLogNotifier without an SMTP host
	NotifierFactory func(cfg config.MailConfig, logger *slog.Logger) (auth.Notifier, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// APIServerFactory creates the HTTP API server.
	// Default: web.NewServer
	APIServerFactory func(addr string, handler http.Handler, logger *slog.Logger) APIServer
}

// Database is the connection pool surface the commands use.
// *pgxpool.Pool satisfies it.
type Database interface {
	store.Pool
	Ping(ctx context.Context) error
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Force(version int) error
	Status() (store.MigrationStatus, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Registry() prometheus.Registerer
	Metrics() *observability.Metrics
}

// APIServer wraps the methods used from web.Server.
type APIServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// withDefaults returns a copy of deps with every nil factory filled in.
func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.DatabaseFactory == nil {
		out.DatabaseFactory = func(ctx context.Context, url string, opts store.ConnectOptions) (Database, error) {
			return store.Connect(ctx, url, opts)
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (Migrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.NotifierFactory == nil {
		out.NotifierFactory = newNotifier
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, ready)
		}
	}
	if out.APIServerFactory == nil {
		out.APIServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) APIServer {
			return web.NewServer(addr, handler, logger)
		}
	}
	return &out
}

// newNotifier sends mail over SMTP when a host is configured and logs the
// links otherwise.
func newNotifier(cfg config.MailConfig, logger *slog.Logger) (auth.Notifier, error) {
	if cfg.Host == "" {
		logger.Warn("no smtp host configured, emailed links will be logged")
		return mail.NewLogNotifier(logger), nil
	}
	return mail.NewSMTPNotifier(mail.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		TLS:      cfg.TLS,
		Timeout:  cfg.Timeout,
		Attempts: cfg.Attempts,
	}, logger)
}

// connectOptions derives pool options from the configuration.
func connectOptions(cfg *config.Config) store.ConnectOptions {
	opts := store.DefaultConnectOptions()
	if cfg.Database.MaxConns > 0 {
		opts.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.ConnectAttempts > 0 {
		opts.ConnectTries = cfg.Database.ConnectAttempts
	}
	return opts
}
