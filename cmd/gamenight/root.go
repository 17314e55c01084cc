// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gamenight/gamenight/internal/config"
	"github.com/gamenight/gamenight/internal/logging"
)

const serviceName = "gamenight"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the GameNight CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamenight",
		Short: "GameNight - weekly game scheduling and signups",
		Long: `GameNight runs the account and schedule API for weekly game nights:
registration, email verification, venues, games, signups and standings.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, text)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewValidateSeedCmd())
	cmd.AddCommand(NewTokensCmd())

	return cmd
}

// loadConfig reads the layered configuration. Only flags the user set on
// the command line override the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configFile, cmd.Flags())
}

// setupLogging installs the default logger described by cfg.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.SetDefault(serviceName, version, cfg.Log.Format, level), nil
}
