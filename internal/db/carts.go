package db

import (
	"context"

	"github.com/google/uuid"
)

const getCart = `
SELECT id, currency, subtotal_cents, total_cents, created_at
FROM carts
WHERE id = $1
`

// GetCart loads one cart header row.
func (q *Queries) GetCart(ctx context.Context, id uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(ctx, getCart, id)
	var c Cart
	err := row.Scan(&c.ID, &c.Currency, &c.SubtotalCents, &c.TotalCents, &c.CreatedAt)
	return c, err
}

const listCartItems = `
SELECT id, cart_id, reference, price_cents, tags
FROM cart_items
WHERE cart_id = $1
ORDER BY id
`

// ListCartItems loads a cart's line items in a stable order.
func (q *Queries) ListCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.Query(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.Reference, &item.PriceCents, &item.Tags); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const updateCartTotals = `
UPDATE carts
SET subtotal_cents = $2, total_cents = $3
WHERE id = $1
`

// UpdateCartTotalsParams are the totals written back after pricing.
type UpdateCartTotalsParams struct {
	ID            uuid.UUID
	SubtotalCents int64
	TotalCents    int64
}

// UpdateCartTotals writes a priced cart's totals.
func (q *Queries) UpdateCartTotals(ctx context.Context, arg UpdateCartTotalsParams) error {
	_, err := q.db.Exec(ctx, updateCartTotals, arg.ID, arg.SubtotalCents, arg.TotalCents)
	return err
}
