// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package main

import (
	"context"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gamenight/gamenight/internal/auth"
	"github.com/gamenight/gamenight/internal/config"
	"github.com/gamenight/gamenight/internal/seed"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	opts := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load initial administrator, venues and games",
		Long: `Applies a YAML seed manifest to the database.
This command is idempotent - entries that already exist are skipped, so it
can be rerun safely after a partial failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runSeedWithDeps(cmd, cfg, opts, nil)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "seed.yaml", "seed manifest path")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeedWithDeps(cmd *cobra.Command, cfg *config.Config, opts *seedConfig, deps *Deps) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	manifest, err := readManifest(opts.file)
	if err != nil {
		return err
	}
	deps = deps.withDefaults()

	logger, err := setupLogging(cfg)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "log.level").Wrap(err)
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	db, err := deps.DatabaseFactory(ctx, cfg.Database.URL, connectOptions(cfg))
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	repos := newRepositories(db)
	seeder, err := seed.NewSeeder(repos.accounts, repos.venues, repos.games, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return oops.Code("WIRING_FAILED").With("component", "seeder").Wrap(err)
	}

	res, err := seeder.Apply(ctx, manifest)
	if res != nil {
		printSeedResult(cmd, res)
	}
	if err != nil {
		return oops.Code("SEED_FAILED").With("file", opts.file).Wrap(err)
	}
	cmd.Println("Seeding complete!")
	return nil
}

func readManifest(path string) (*seed.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an operator-supplied flag
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("file", path).Wrap(err)
	}
	m, err := seed.Parse(data)
	if err != nil {
		return nil, oops.With("file", path).Wrap(err)
	}
	return m, nil
}

func printSeedResult(cmd *cobra.Command, res *seed.Result) {
	switch {
	case res.AdminCreated:
		cmd.Println("Admin: created")
	case res.AdminSkipped:
		cmd.Println("Admin: already exists, skipped")
	}
	cmd.Printf("Venues: %d created, %d skipped\n", res.VenuesCreated, res.VenuesSkipped)
	cmd.Printf("Games: %d created, %d skipped\n", res.GamesCreated, res.GamesSkipped)
}

// NewValidateSeedCmd creates the validate-seed subcommand.
func NewValidateSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate-seed",
		Short: "Validate a seed manifest without touching the database",
		Long: `Checks a seed manifest against the JSON Schema and the domain rules.
Does NOT require a database connection.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch manifest errors early:
  gamenight validate-seed --file seed.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidateSeed(cmd, file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed manifest path")
	return cmd
}

func runValidateSeed(cmd *cobra.Command, file string) error {
	m, err := readManifest(file)
	if err != nil {
		return err
	}
	cmd.Printf("%s is valid: version %s, %d venues, %d games", file, m.Version, len(m.Venues), len(m.Games))
	if m.Admin != nil {
		cmd.Printf(", admin %s", m.Admin.Email)
	}
	cmd.Println()
	return nil
}
