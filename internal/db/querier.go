package db

import (
	"context"

	"github.com/google/uuid"
)

// Querier is the store interface consumed by services and handlers. It is
// satisfied by *Queries and by test mocks.
type Querier interface {
	GetPromotionStack(ctx context.Context, id uuid.UUID) (PromotionStack, error)
	ListPromotionStacks(ctx context.Context) ([]PromotionStack, error)
	ListPromotionLayers(ctx context.Context, stackID uuid.UUID) ([]PromotionLayer, error)
	ListPromotionsByStack(ctx context.Context, stackID uuid.UUID) ([]Promotion, error)
	ListQualificationsByStack(ctx context.Context, stackID uuid.UUID) ([]Qualification, error)
	ListQualificationRulesByStack(ctx context.Context, stackID uuid.UUID) ([]QualificationRule, error)

	GetCart(ctx context.Context, id uuid.UUID) (Cart, error)
	ListCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error)
	UpdateCartTotals(ctx context.Context, arg UpdateCartTotalsParams) error

	CreateReceipt(ctx context.Context, arg CreateReceiptParams) (Receipt, error)
	CreatePromotionRedemption(ctx context.Context, arg CreatePromotionRedemptionParams) (PromotionRedemption, error)

	GetBacktestRun(ctx context.Context, id uuid.UUID) (BacktestRun, error)
	UpdateBacktestRunStatus(ctx context.Context, arg UpdateBacktestRunStatusParams) error
	CompleteBacktestRun(ctx context.Context, arg CompleteBacktestRunParams) error
	ListBacktestRunCartIDs(ctx context.Context, runID uuid.UUID) ([]uuid.UUID, error)
	MarkBacktestRunCart(ctx context.Context, arg MarkBacktestRunCartParams) error
}

var _ Querier = (*Queries)(nil)
