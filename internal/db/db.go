package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface shared by pgx pools, connections, and transactions.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// New creates a Queries instance over a pool, connection, or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries executes the store's SQL against the wrapped DBTX.
type Queries struct {
	db DBTX
}

// WithTx returns a Queries instance that runs against the provided
// transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// GetDBTX returns the underlying database transaction or connection interface
// This is useful for starting transactions or accessing the raw database connection
func (q *Queries) GetDBTX() DBTX {
	return q.db
}

// Store combines query execution with transaction scoping. It is satisfied
// by *Queries and by test mocks.
type Store interface {
	Querier
	RunInTransaction(ctx context.Context, fn func(qtx Querier) error) error
}

var _ Store = (*Queries)(nil)

// txBeginner is satisfied by pools, connections, and transactions, all of
// which can open a (possibly nested) transaction.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RunInTransaction executes fn against a transaction-scoped Queries. The
// transaction commits only if fn returns nil; any error rolls the whole
// write set back.
func (q *Queries) RunInTransaction(ctx context.Context, fn func(qtx Querier) error) error {
	beginner, ok := q.db.(txBeginner)
	if !ok {
		return fmt.Errorf("store does not support transactions")
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful commit returns ErrTxClosed, which is
	// harmless.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(q.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
