package engine

import "github.com/google/uuid"

// PromotionApplication is the audit record of one promotion discounting one
// item once. OriginalPrice is the item's running price before this
// application; promotions in the same run compound on each other.
type PromotionApplication struct {
	PromotionID   uuid.UUID `json:"promotion_id"`
	PromotionCode string    `json:"promotion_code"`
	ItemID        uuid.UUID `json:"item_id"`
	ItemReference string    `json:"item_reference"`
	OriginalPrice Money     `json:"original_price"`
	FinalPrice    Money     `json:"final_price"`
	Sequence      int       `json:"sequence"`
}

// DiscountCents returns the amount this application took off the item.
func (a PromotionApplication) DiscountCents() int64 {
	return a.OriginalPrice.AmountCents - a.FinalPrice.AmountCents
}

// Receipt is the priced result of one cart pass: totals plus the ordered
// audit trail of every promotion application, in the order they were
// granted.
type Receipt struct {
	Currency          string                 `json:"currency"`
	SubtotalCents     int64                  `json:"subtotal_cents"`
	TotalCents        int64                  `json:"total_cents"`
	DiscountCents     int64                  `json:"discount_cents"`
	Applications      []PromotionApplication `json:"applications"`
	PromotionTotals   map[uuid.UUID]int64    `json:"-"`
	ItemCount         int                    `json:"item_count"`
	DiscountedItems   int                    `json:"discounted_items"`
}

// buildReceipt assembles the receipt from finished items and the run-ordered
// application trail.
func buildReceipt(currency string, items []*Item, applications []PromotionApplication) *Receipt {
	receipt := &Receipt{
		Currency:        currency,
		Applications:    applications,
		PromotionTotals: make(map[uuid.UUID]int64),
		ItemCount:       len(items),
	}

	for _, item := range items {
		receipt.SubtotalCents += item.OriginalPrice.AmountCents
		receipt.TotalCents += item.RunningPrice.AmountCents
		if item.Participated() {
			receipt.DiscountedItems++
		}
	}
	receipt.DiscountCents = receipt.SubtotalCents - receipt.TotalCents

	for _, app := range applications {
		receipt.PromotionTotals[app.PromotionID] += app.DiscountCents()
	}

	return receipt
}
