// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

//go:build integration

// Package storetest starts disposable PostgreSQL containers for integration
// tests.
package storetest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gamenight/gamenight/internal/store"
)

// T is the subset of testing.T and ginkgo's GinkgoT() used here.
type T interface {
	Helper()
	Fatalf(format string, args ...any)
}

// StartPostgres runs an empty PostgreSQL container and returns its
// connection string and a terminate func.
func StartPostgres(ctx context.Context, t T) (string, func()) {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gamenight_test"),
		postgres.WithUsername("gamenight"),
		postgres.WithPassword("gamenight"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("container connection string: %v", err)
	}

	return connStr, func() { _ = container.Terminate(ctx) }
}

// NewDatabase starts a container, applies every migration and returns a
// connected pool. The cleanup func closes the pool and stops the container.
func NewDatabase(ctx context.Context, t T) (*pgxpool.Pool, func()) {
	t.Helper()

	connStr, terminate := StartPostgres(ctx, t)

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		terminate()
		t.Fatalf("create migrator: %v", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		terminate()
		t.Fatalf("apply migrations: %v", err)
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr, store.DefaultConnectOptions())
	if err != nil {
		terminate()
		t.Fatalf("connect: %v", err)
	}

	return pool, func() {
		pool.Close()
		terminate()
	}
}
