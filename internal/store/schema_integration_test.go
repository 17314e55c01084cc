// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

//go:build integration

package store_test

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/gamenight/gamenight/internal/store"
	"github.com/gamenight/gamenight/internal/store/storetest"
)

var _ = Describe("Schema", Ordered, func() {
	var (
		ctx       context.Context
		pool      *pgxpool.Pool
		terminate func()
	)

	BeforeAll(func() {
		ctx = context.Background()
		var connStr string
		connStr, terminate = storetest.StartPostgres(ctx, GinkgoT())

		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = store.Connect(ctx, connStr, store.DefaultConnectOptions())
		Expect(err).NotTo(HaveOccurred())

		_, err = pool.Exec(ctx, `
			INSERT INTO accounts (id, email, password_hash, first_name, last_name)
			VALUES ('A1', 'a@x.com', 'h', 'A', 'One'), ('A2', 'b@x.com', 'h', 'B', 'Two');
			INSERT INTO venues (id, name, street, city, state, zip)
			VALUES ('V1', 'Pub', '1 Main St', 'Springfield', 'IL', '62701');
			INSERT INTO games (id, venue_id, day, start_time)
			VALUES ('G1', 'V1', 2, '19:00:00'), ('G2', 'V1', 4, '19:30:00');`)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if terminate != nil {
			terminate()
		}
	})

	It("rejects a second signup for the same account", func() {
		_, err := pool.Exec(ctx, `INSERT INTO game_signups (id, game_id, account_id) VALUES ('S1', 'G1', 'A1')`)
		Expect(err).NotTo(HaveOccurred())

		_, err = pool.Exec(ctx, `INSERT INTO game_signups (id, game_id, account_id) VALUES ('S2', 'G2', 'A1')`)
		Expect(store.IsUniqueViolation(err, store.ConstraintSignupAccount)).To(BeTrue())
	})

	It("rejects duplicate emails", func() {
		_, err := pool.Exec(ctx, `INSERT INTO accounts (id, email, password_hash, first_name, last_name)
			VALUES ('A3', 'a@x.com', 'h', 'C', 'Three')`)
		Expect(store.IsUniqueViolation(err, store.ConstraintAccountEmail)).To(BeTrue())
	})

	It("refuses to delete a venue that still has games", func() {
		_, err := pool.Exec(ctx, `DELETE FROM venues WHERE id = 'V1'`)
		Expect(store.IsForeignKeyViolation(err, store.ConstraintGameVenue)).To(BeTrue())
	})

	It("cascades account deletion to signups", func() {
		_, err := pool.Exec(ctx, `DELETE FROM accounts WHERE id = 'A1'`)
		Expect(err).NotTo(HaveOccurred())

		var n int
		Expect(pool.QueryRow(ctx, `SELECT count(*) FROM game_signups WHERE account_id = 'A1'`).Scan(&n)).To(Succeed())
		Expect(n).To(BeZero())
	})

	It("rejects malformed zip codes and start times", func() {
		_, err := pool.Exec(ctx, `INSERT INTO venues (id, name, street, city, state, zip)
			VALUES ('V2', 'Bar', '2 Main St', 'Springfield', 'IL', '6270')`)
		Expect(err).To(HaveOccurred())

		_, err = pool.Exec(ctx, `INSERT INTO games (id, venue_id, day, start_time) VALUES ('G3', 'V1', 1, '7:00')`)
		Expect(err).To(HaveOccurred())
	})
})
