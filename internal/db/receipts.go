package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createReceipt = `
INSERT INTO receipts (id, cart_id, stack_id, backtest_run_id, currency, subtotal_cents, total_cents, discount_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, cart_id, stack_id, backtest_run_id, currency, subtotal_cents, total_cents, discount_cents, created_at
`

// CreateReceiptParams describes one persisted pricing outcome.
type CreateReceiptParams struct {
	ID            uuid.UUID
	CartID        uuid.UUID
	StackID       uuid.UUID
	BacktestRunID pgtype.UUID
	Currency      string
	SubtotalCents int64
	TotalCents    int64
	DiscountCents int64
}

// CreateReceipt inserts a receipt row.
func (q *Queries) CreateReceipt(ctx context.Context, arg CreateReceiptParams) (Receipt, error) {
	row := q.db.QueryRow(ctx, createReceipt,
		arg.ID, arg.CartID, arg.StackID, arg.BacktestRunID,
		arg.Currency, arg.SubtotalCents, arg.TotalCents, arg.DiscountCents,
	)
	var r Receipt
	err := row.Scan(&r.ID, &r.CartID, &r.StackID, &r.BacktestRunID,
		&r.Currency, &r.SubtotalCents, &r.TotalCents, &r.DiscountCents, &r.CreatedAt)
	return r, err
}

const createPromotionRedemption = `
INSERT INTO promotion_redemptions (id, receipt_id, promotion_id, cart_item_id, original_price_cents, final_price_cents, sequence)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, receipt_id, promotion_id, cart_item_id, original_price_cents, final_price_cents, sequence
`

// CreatePromotionRedemptionParams describes one audit row.
type CreatePromotionRedemptionParams struct {
	ID                 uuid.UUID
	ReceiptID          uuid.UUID
	PromotionID        uuid.UUID
	CartItemID         uuid.UUID
	OriginalPriceCents int64
	FinalPriceCents    int64
	Sequence           int32
}

// CreatePromotionRedemption inserts one redemption audit row.
func (q *Queries) CreatePromotionRedemption(ctx context.Context, arg CreatePromotionRedemptionParams) (PromotionRedemption, error) {
	row := q.db.QueryRow(ctx, createPromotionRedemption,
		arg.ID, arg.ReceiptID, arg.PromotionID, arg.CartItemID,
		arg.OriginalPriceCents, arg.FinalPriceCents, arg.Sequence,
	)
	var r PromotionRedemption
	err := row.Scan(&r.ID, &r.ReceiptID, &r.PromotionID, &r.CartItemID,
		&r.OriginalPriceCents, &r.FinalPriceCents, &r.Sequence)
	return r, err
}
