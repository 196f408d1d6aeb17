package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getBacktestRun = `
SELECT id, stack_id, status, total_carts, succeeded, failed, created_at, completed_at
FROM backtest_runs
WHERE id = $1
`

// GetBacktestRun loads one backtest run row.
func (q *Queries) GetBacktestRun(ctx context.Context, id uuid.UUID) (BacktestRun, error) {
	row := q.db.QueryRow(ctx, getBacktestRun, id)
	var r BacktestRun
	err := row.Scan(&r.ID, &r.StackID, &r.Status, &r.TotalCarts, &r.Succeeded, &r.Failed, &r.CreatedAt, &r.CompletedAt)
	return r, err
}

const updateBacktestRunStatus = `
UPDATE backtest_runs
SET status = $2
WHERE id = $1
`

// UpdateBacktestRunStatusParams moves a run between statuses.
type UpdateBacktestRunStatusParams struct {
	ID     uuid.UUID
	Status string
}

// UpdateBacktestRunStatus updates a run's status.
func (q *Queries) UpdateBacktestRunStatus(ctx context.Context, arg UpdateBacktestRunStatusParams) error {
	_, err := q.db.Exec(ctx, updateBacktestRunStatus, arg.ID, arg.Status)
	return err
}

const completeBacktestRun = `
UPDATE backtest_runs
SET status = $2, total_carts = $3, succeeded = $4, failed = $5, completed_at = $6
WHERE id = $1
`

// CompleteBacktestRunParams records a finished run's summary.
type CompleteBacktestRunParams struct {
	ID          uuid.UUID
	Status      string
	TotalCarts  int32
	Succeeded   int32
	Failed      int32
	CompletedAt pgtype.Timestamptz
}

// CompleteBacktestRun writes a finished run's summary counters.
func (q *Queries) CompleteBacktestRun(ctx context.Context, arg CompleteBacktestRunParams) error {
	_, err := q.db.Exec(ctx, completeBacktestRun,
		arg.ID, arg.Status, arg.TotalCarts, arg.Succeeded, arg.Failed, arg.CompletedAt)
	return err
}

const listBacktestRunCartIDs = `
SELECT cart_id
FROM backtest_run_carts
WHERE run_id = $1
ORDER BY cart_id
`

// ListBacktestRunCartIDs lists the carts attached to a run in a stable
// order.
func (q *Queries) ListBacktestRunCartIDs(ctx context.Context, runID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, listBacktestRunCartIDs, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const markBacktestRunCart = `
UPDATE backtest_run_carts
SET status = $3, error = $4
WHERE run_id = $1 AND cart_id = $2
`

// MarkBacktestRunCartParams records one cart's outcome within a run.
type MarkBacktestRunCartParams struct {
	RunID  uuid.UUID
	CartID uuid.UUID
	Status string
	Error  pgtype.Text
}

// MarkBacktestRunCart records a cart's outcome within a run.
func (q *Queries) MarkBacktestRunCart(ctx context.Context, arg MarkBacktestRunCartParams) error {
	_, err := q.db.Exec(ctx, markBacktestRunCart, arg.RunID, arg.CartID, arg.Status, arg.Error)
	return err
}
