package services

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/promostack/promostack-api/internal/constants"
	"github.com/promostack/promostack-api/internal/db"
	"github.com/promostack/promostack-api/internal/engine"
	"github.com/promostack/promostack-api/internal/logger"
)

const defaultBacktestWorkers = 4

// BacktestRunner replays historical carts through a promotion stack. Carts
// are independent of each other, so they fan out across a worker pool; each
// cart gets its own budget state and one cart's failure never aborts the
// batch.
type BacktestRunner struct {
	queries db.Querier
	pricing *PricingService
	logger  *zap.Logger
	workers int
}

// NewBacktestRunner creates a runner with the default worker pool size.
func NewBacktestRunner(queries db.Querier, pricing *PricingService) *BacktestRunner {
	return &BacktestRunner{
		queries: queries,
		pricing: pricing,
		logger:  logger.Log,
		workers: defaultBacktestWorkers,
	}
}

// BacktestResults summarizes one finished run.
type BacktestResults struct {
	Total     int
	Succeeded int
	Failed    int
}

// ProcessRun executes one backtest run end to end: mark it running, price
// every attached cart, record per-cart outcomes, and write the summary
// counters. Returns an error only when the run itself cannot proceed;
// individual cart failures are folded into the results.
func (r *BacktestRunner) ProcessRun(ctx context.Context, runID uuid.UUID) (*BacktestResults, error) {
	run, err := r.queries.GetBacktestRun(ctx, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get backtest run")
	}

	if run.Status != constants.PendingStatus {
		r.logger.Warn("backtest run is not pending, skipping",
			zap.String("run_id", runID.String()),
			zap.String("status", run.Status))
		return &BacktestResults{}, nil
	}

	if err := r.queries.UpdateBacktestRunStatus(ctx, db.UpdateBacktestRunStatusParams{
		ID:     runID,
		Status: constants.RunningStatus,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to mark run running")
	}

	// One configuration snapshot for the whole run. The compiled graph is
	// read-only; budget state lives per pipeline run, so sharing it across
	// workers keeps every cart isolated.
	graph, err := r.pricing.CompileStack(ctx, run.StackID)
	if err != nil {
		r.failRun(ctx, runID, 0)
		return nil, err
	}

	cartIDs, err := r.queries.ListBacktestRunCartIDs(ctx, runID)
	if err != nil {
		r.failRun(ctx, runID, 0)
		return nil, errors.Wrap(err, "failed to list run carts")
	}

	backtestRunID := pgtype.UUID{Bytes: runID, Valid: true}

	jobs := make(chan uuid.UUID)
	outcomes := make(chan bool, len(cartIDs))
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cartID := range jobs {
				outcomes <- r.processCart(ctx, graph, run.StackID, cartID, runID, backtestRunID)
			}
		}()
	}

	for _, cartID := range cartIDs {
		jobs <- cartID
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	results := &BacktestResults{Total: len(cartIDs)}
	for succeeded := range outcomes {
		if succeeded {
			results.Succeeded++
		} else {
			results.Failed++
		}
	}

	status := constants.CompletedStatus
	if results.Failed > 0 && results.Succeeded == 0 && results.Total > 0 {
		status = constants.FailedStatus
	}
	if err := r.queries.CompleteBacktestRun(ctx, db.CompleteBacktestRunParams{
		ID:          runID,
		Status:      status,
		TotalCarts:  int32(results.Total),
		Succeeded:   int32(results.Succeeded),
		Failed:      int32(results.Failed),
		CompletedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to complete run")
	}

	r.logger.Info("backtest run finished",
		zap.String("run_id", runID.String()),
		zap.String("status", status),
		zap.Int("total", results.Total),
		zap.Int("succeeded", results.Succeeded),
		zap.Int("failed", results.Failed))
	return results, nil
}

// processCart prices one cart and records its outcome. Transient storage
// failures retry with exponential backoff; engine errors are deterministic
// and fail the cart immediately.
func (r *BacktestRunner) processCart(ctx context.Context, graph *engine.StackGraph, stackID, cartID, runID uuid.UUID, backtestRunID pgtype.UUID) bool {
	operation := func() error {
		_, err := r.pricing.PriceCartWithGraph(ctx, graph, stackID, cartID, backtestRunID)
		if err != nil && isEngineError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		r.logger.Error("backtest cart failed",
			zap.String("run_id", runID.String()),
			zap.String("cart_id", cartID.String()),
			zap.Error(err))
		r.markCart(ctx, runID, cartID, constants.FailedStatus, err.Error())
		return false
	}

	r.markCart(ctx, runID, cartID, constants.CompletedStatus, "")
	return true
}

// markCart records a cart outcome; a failure here is logged but never
// overturns the pricing result.
func (r *BacktestRunner) markCart(ctx context.Context, runID, cartID uuid.UUID, status, errMessage string) {
	params := db.MarkBacktestRunCartParams{
		RunID:  runID,
		CartID: cartID,
		Status: status,
	}
	if errMessage != "" {
		params.Error = pgtype.Text{String: errMessage, Valid: true}
	}
	if err := r.queries.MarkBacktestRunCart(ctx, params); err != nil {
		r.logger.Error("failed to mark backtest cart",
			zap.String("run_id", runID.String()),
			zap.String("cart_id", cartID.String()),
			zap.Error(err))
	}
}

// failRun moves a run to failed when it cannot even start.
func (r *BacktestRunner) failRun(ctx context.Context, runID uuid.UUID, totalCarts int32) {
	if err := r.queries.CompleteBacktestRun(ctx, db.CompleteBacktestRunParams{
		ID:          runID,
		Status:      constants.FailedStatus,
		TotalCarts:  totalCarts,
		CompletedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}); err != nil {
		r.logger.Error("failed to mark run failed",
			zap.String("run_id", runID.String()),
			zap.Error(err))
	}
}

func isEngineError(err error) bool {
	var configErr *engine.ConfigurationError
	var graphErr *engine.GraphValidationError
	var currencyErr *engine.CurrencyMismatchError
	return errors.As(err, &configErr) || errors.As(err, &graphErr) || errors.As(err, &currencyErr)
}
