package engine

import "github.com/google/uuid"

// Promotion is one qualification-gated discount attached to a layer.
type Promotion struct {
	ID              uuid.UUID
	Code            string
	SortOrder       int32
	QualificationID uuid.UUID
	Discount        Discount
	Budget          Budget
}

// promotionEvaluator combines qualification, budget, and discount
// resolution: does this promotion apply to these items, and for how much.
type promotionEvaluator struct {
	qualifications *QualificationEvaluator
	budgets        *BudgetTracker
}

// evaluate runs one promotion over a layer's current item set. Matched
// items get their proposed adjustments budget-checked in item order; granted
// adjustments mutate the running price and are recorded on the item. The
// returned applications preserve grant order.
func (e *promotionEvaluator) evaluate(promotion Promotion, items []*Item) ([]PromotionApplication, error) {
	matched := make([]*Item, 0, len(items))
	for _, item := range items {
		ok, err := e.qualifications.Evaluate(promotion.QualificationID, item)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	adjustments, err := promotion.Discount.Resolve(matched)
	if err != nil {
		return nil, err
	}

	var applications []PromotionApplication
	for _, adjustment := range adjustments {
		discountCents := adjustment.Item.RunningPrice.AmountCents - adjustment.NewPrice.AmountCents
		if discountCents == 0 {
			// Nothing changed for this item; do not record or charge budget.
			continue
		}
		// A price-raising override spends no monetary budget; it must
		// never credit it either.
		charge := discountCents
		if charge < 0 {
			charge = 0
		}
		if !e.budgets.HasRoom(promotion.ID, charge) {
			continue
		}
		if err := sameCurrency(adjustment.Item.RunningPrice, adjustment.NewPrice); err != nil {
			return nil, err
		}

		app := adjustment.Item.recordApplication(promotion.ID, promotion.Code, adjustment.NewPrice)
		e.budgets.Consume(promotion.ID, charge)
		applications = append(applications, app)
	}
	return applications, nil
}
