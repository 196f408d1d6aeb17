package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promostack/promostack-api/internal/db"
)

// fakeConn satisfies DBTX and hands out a recording transaction.
type fakeConn struct {
	tx *fakeTx
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.tx, nil
}

// fakeTx records commit and rollback calls.
type fakeTx struct {
	fakeConn
	commits   int
	rollbacks int
	committed bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rollbacks++
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

func TestQueries_RunInTransaction_CommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	queries := db.New(&fakeConn{tx: tx})

	var scoped db.Querier
	err := queries.RunInTransaction(context.Background(), func(qtx db.Querier) error {
		scoped = qtx
		return nil
	})

	require.NoError(t, err)
	assert.NotNil(t, scoped)
	assert.Equal(t, 1, tx.commits)
	assert.Equal(t, 0, tx.rollbacks)
}

func TestQueries_RunInTransaction_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	queries := db.New(&fakeConn{tx: tx})

	failure := errors.New("totals write failed")
	err := queries.RunInTransaction(context.Background(), func(qtx db.Querier) error {
		return failure
	})

	require.ErrorIs(t, err, failure)
	assert.Equal(t, 0, tx.commits)
	assert.Equal(t, 1, tx.rollbacks)
}
