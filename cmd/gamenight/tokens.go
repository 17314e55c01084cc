// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gamenight/gamenight/internal/config"
)

const defaultPurgeTimeout = time.Minute

// NewTokensCmd creates the tokens subcommand.
func NewTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Maintain single-use email tokens",
	}

	var timeout time.Duration
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired verification tokens and spent reset tokens",
		Long: `Deletes verification tokens past their expiry and password reset
tokens that are expired or already used. Safe to run from cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runPurgeWithDeps(cmd, cfg, timeout, nil)
		},
	}
	purge.Flags().DurationVar(&timeout, "timeout", defaultPurgeTimeout, "timeout for the purge")
	cmd.AddCommand(purge)

	return cmd
}

func runPurgeWithDeps(cmd *cobra.Command, cfg *config.Config, timeout time.Duration, deps *Deps) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	deps = deps.withDefaults()

	logger, err := setupLogging(cfg)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "log.level").Wrap(err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	db, err := deps.DatabaseFactory(ctx, cfg.Database.URL, connectOptions(cfg))
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	tokens, err := newRepositories(db).tokenService()
	if err != nil {
		return oops.Code("WIRING_FAILED").With("component", "tokens").Wrap(err)
	}
	verifications, resets, err := tokens.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	logger.Info("purged tokens", "verifications", verifications, "resets", resets)
	cmd.Printf("Purged %d verification tokens and %d reset tokens\n", verifications, resets)
	return nil
}
