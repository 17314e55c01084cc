// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package store

import (
	"context"

	"github.com/samber/oops"
)

type txKey struct{}

// Transactor runs functions inside a pgx transaction. The transaction travels
// in the context so every repository called from fn joins it via Conn.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a Transactor backed by pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// InTransaction begins a transaction, stores it in ctx and calls fn. The
// transaction commits when fn returns nil and rolls back otherwise, including
// when ctx is cancelled before commit. Nested calls reuse the outer
// transaction.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(Querier); ok {
		return fn(ctx)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(context.WithValue(ctx, txKey{}, Querier(tx))); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// Conn returns the transaction carried by ctx, or q when there is none.
func Conn(ctx context.Context, q Querier) Querier {
	if tx, ok := ctx.Value(txKey{}).(Querier); ok {
		return tx
	}
	return q
}
