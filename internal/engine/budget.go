package engine

import "github.com/google/uuid"

// Budget caps how often, or for how much money, one promotion may discount
// within a single processing run. A nil cap means unlimited on that axis.
type Budget struct {
	MaxApplications *int32
	MaxAmount       *Money
}

// Unlimited reports whether neither cap is set.
func (b Budget) Unlimited() bool {
	return b.MaxApplications == nil && b.MaxAmount == nil
}

type budgetState struct {
	remainingApplications *int32
	remainingCents        *int64
}

// BudgetTracker tracks remaining allowance per promotion across one
// processing run. Budgets are scoped to a single cart pass and are never
// shared across carts in a batch; each run gets a fresh tracker.
type BudgetTracker struct {
	states map[uuid.UUID]*budgetState
}

// NewBudgetTracker creates a tracker seeded with each promotion's budget.
func NewBudgetTracker(budgets map[uuid.UUID]Budget) *BudgetTracker {
	states := make(map[uuid.UUID]*budgetState, len(budgets))
	for promotionID, budget := range budgets {
		state := &budgetState{}
		if budget.MaxApplications != nil {
			apps := *budget.MaxApplications
			state.remainingApplications = &apps
		}
		if budget.MaxAmount != nil {
			cents := budget.MaxAmount.AmountCents
			state.remainingCents = &cents
		}
		states[promotionID] = state
	}
	return &BudgetTracker{states: states}
}

// HasRoom reports whether granting a discount of the given size would stay
// within both remaining counters. Exhaustion is a normal business outcome;
// the item simply passes through unchanged.
func (t *BudgetTracker) HasRoom(promotionID uuid.UUID, discountCents int64) bool {
	state, ok := t.states[promotionID]
	if !ok {
		return true
	}
	if state.remainingApplications != nil && *state.remainingApplications < 1 {
		return false
	}
	if state.remainingCents != nil && *state.remainingCents < discountCents {
		return false
	}
	return true
}

// Consume decrements both counters for a granted discount. The run is
// single-threaded, so the consult-then-consume pair is atomic relative to
// the item-then-promotion processing order.
func (t *BudgetTracker) Consume(promotionID uuid.UUID, discountCents int64) {
	state, ok := t.states[promotionID]
	if !ok {
		return
	}
	if state.remainingApplications != nil {
		*state.remainingApplications--
	}
	if state.remainingCents != nil {
		*state.remainingCents -= discountCents
	}
}
