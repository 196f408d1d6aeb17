package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/promostack/promostack-api/internal/db"
	"github.com/promostack/promostack-api/internal/helpers"
	"github.com/promostack/promostack-api/internal/logger"
	"github.com/promostack/promostack-api/internal/services"
)

// Application holds the application dependencies
type Application struct {
	db     *db.Queries
	logger *zap.Logger
	runner *services.BacktestRunner
}

// BacktestMessage is the queue payload that triggers one backtest run.
type BacktestMessage struct {
	RunID string `json:"run_id"`
}

// ProcessingResult summarizes one processed queue message.
type ProcessingResult struct {
	MessageID string `json:"message_id"`
	RunID     string `json:"run_id"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

func main() {
	// Initialize logger
	logger.InitLogger(helpers.StageProd)
	zapLogger := logger.Log
	defer zapLogger.Sync()

	app, err := createApplication(zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create application", zap.Error(err))
	}

	// Start Lambda handler
	lambda.Start(app.handleBacktestEvent)
}

func createApplication(logger *zap.Logger) (*Application, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	// Create database connection
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	// Test database connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	queries := db.New(pool)
	pricing := services.NewPricingService(queries)
	runner := services.NewBacktestRunner(queries, pricing)

	return &Application{
		db:     queries,
		logger: logger,
		runner: runner,
	}, nil
}

// handleBacktestEvent processes SQS events carrying backtest run triggers
func (app *Application) handleBacktestEvent(ctx context.Context, event events.SQSEvent) error {
	app.logger.Info("Processing backtest event", zap.Int("message_count", len(event.Records)))

	var results []ProcessingResult
	for _, record := range event.Records {
		result := app.processMessage(ctx, record)
		results = append(results, result)

		if result.Error != "" {
			app.logger.Error("Backtest message processing failed",
				zap.String("message_id", result.MessageID),
				zap.String("run_id", result.RunID),
				zap.String("error", result.Error))
		} else {
			app.logger.Info("Backtest run processed",
				zap.String("message_id", result.MessageID),
				zap.String("run_id", result.RunID),
				zap.Int("succeeded", result.Succeeded),
				zap.Int("failed", result.Failed))
		}
	}

	successful := 0
	failed := 0
	for _, result := range results {
		if result.Error == "" {
			successful++
		} else {
			failed++
		}
	}

	app.logger.Info("Backtest processing complete",
		zap.Int("total_messages", len(results)),
		zap.Int("successful", successful),
		zap.Int("failed", failed))

	return nil
}

// processMessage handles a single queue message
func (app *Application) processMessage(ctx context.Context, record events.SQSMessage) ProcessingResult {
	result := ProcessingResult{MessageID: record.MessageId}

	var message BacktestMessage
	if err := json.Unmarshal([]byte(record.Body), &message); err != nil {
		result.Error = fmt.Sprintf("Failed to parse backtest message: %v", err)
		return result
	}
	result.RunID = message.RunID

	runID, err := uuid.Parse(message.RunID)
	if err != nil {
		result.Error = fmt.Sprintf("Invalid run ID: %v", err)
		return result
	}

	runResults, err := app.runner.ProcessRun(ctx, runID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Succeeded = runResults.Succeeded
	result.Failed = runResults.Failed
	return result
}
