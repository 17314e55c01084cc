// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/config"
	"github.com/gamenight/gamenight/internal/mail"
	"github.com/gamenight/gamenight/internal/schedule"
	"github.com/gamenight/gamenight/internal/web"
)

// defaultShutdownTimeout applies when the configuration leaves it unset.
const defaultShutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server and, when a metrics address is set, the
observability server with /metrics and health probes.

The schema must be current; run "gamenight migrate up" first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	flags := cmd.Flags()
	flags.String("http-addr", ":3000", "API listen address")
	flags.String("metrics-addr", "127.0.0.1:9100", "observability listen address (empty to disable)")
	flags.StringSlice("cors-origin", nil, "allowed browser origin pattern, repeatable (e.g. https://*.example.com)")
	flags.String("api-url", "", "public base URL of this API, used in emailed links")
	flags.String("frontend-url", "", "base URL of the web app, used in emailed links")

	return cmd
}

// runServeWithDeps runs the server until a signal arrives, ctx is cancelled
// or a listener fails. A nil deps uses the defaults.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *Deps) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	deps = deps.withDefaults()

	logger, err := setupLogging(cfg)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "log.level").Wrap(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := deps.DatabaseFactory(ctx, cfg.Database.URL, connectOptions(cfg))
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()
	logger.Info("database connected")

	notifier, err := deps.NotifierFactory(cfg.Mail, logger)
	if err != nil {
		return oops.Code("MAIL_SETUP_FAILED").Wrap(err)
	}

	apiConfig, err := newAPIConfig(cfg, newRepositories(db), notifier, logger)
	if err != nil {
		return err
	}

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	// Start observability server if configured
	var obsServer ObservabilityServer
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, db.Ping)
		auth.RegisterMetrics(obsServer.Registry())
		schedule.RegisterMetrics(obsServer.Registry())
		mail.RegisterMetrics(obsServer.Registry())
		apiConfig.Observer = obsServer.Metrics()

		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	handler, err := web.NewHandler(apiConfig)
	if err != nil {
		stopServer(obsServer, shutdownTimeout, "observability")
		return oops.Code("WIRING_FAILED").With("component", "http").Wrap(err)
	}

	apiServer := deps.APIServerFactory(cfg.HTTP.Addr, handler, logger)
	apiErrChan, err := apiServer.Start()
	if err != nil {
		stopServer(obsServer, shutdownTimeout, "observability")
		return err
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("GameNight API listening on " + apiServer.Addr())
	logger.Info("api server ready", "addr", apiServer.Addr(), "version", version)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	stopServer(apiServer, shutdownTimeout, "api")
	stopServer(obsServer, shutdownTimeout, "observability")
	logger.Info("shutdown complete")
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
}

// stopServer stops s within timeout. A nil s is skipped.
func stopServer(s stopper, timeout time.Duration, name string) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
