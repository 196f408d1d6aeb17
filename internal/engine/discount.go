package engine

// DiscountKind identifies the top-level shape of a discount definition.
type DiscountKind string

const (
	DiscountKindSimple      DiscountKind = "simple"
	DiscountKindMixAndMatch DiscountKind = "mix_and_match"
	DiscountKindTiered      DiscountKind = "tiered_threshold"
)

// CalculatorKind identifies how a simple or per-tier discount adjusts a price.
type CalculatorKind string

const (
	CalculatorPercentOff     CalculatorKind = "percent_off"
	CalculatorAmountOff      CalculatorKind = "amount_off"
	CalculatorAmountOverride CalculatorKind = "amount_override"
)

// DiscountScope selects which of the matched items a mix-and-match or tiered
// calculator touches.
type DiscountScope string

const (
	ScopeAllItems DiscountScope = "all_items"
	ScopeCheapest DiscountScope = "cheapest"
	ScopeEachItem DiscountScope = "each_item"
	ScopeTotal    DiscountScope = "total"
)

// TierBasis selects what a tiered-threshold discount measures the matched
// set by: combined running price or item count.
type TierBasis string

const (
	TierBasisAmount   TierBasis = "amount"
	TierBasisQuantity TierBasis = "quantity"
)

// Calculator is one price adjustment: a percentage in basis points, a fixed
// amount off, or a fixed amount override.
type Calculator struct {
	Kind            CalculatorKind
	PercentBasisPts int32
	Amount          Money
}

// DiscountTier is one rung of a tiered-threshold discount. The highest tier
// whose threshold does not exceed the qualifying total/count wins.
type DiscountTier struct {
	Threshold  int64
	Calculator Calculator
	Scope      DiscountScope
}

// Discount is a full discount definition attached to a promotion.
type Discount struct {
	Kind       DiscountKind
	Calculator Calculator
	Scope      DiscountScope
	TierBasis  TierBasis
	Tiers      []DiscountTier
}

// PriceAdjustment is one proposed price change for one matched item. The
// budget tracker decides whether it is actually granted.
type PriceAdjustment struct {
	Item     *Item
	NewPrice Money
}

// Validate rejects malformed discount definitions before any item is
// processed.
func (d Discount) Validate(currency string) error {
	switch d.Kind {
	case DiscountKindSimple:
		return d.Calculator.validate(currency)
	case DiscountKindMixAndMatch:
		if err := validScope(d.Scope); err != nil {
			return err
		}
		return d.Calculator.validate(currency)
	case DiscountKindTiered:
		if d.TierBasis != TierBasisAmount && d.TierBasis != TierBasisQuantity {
			return NewConfigurationError("unknown tier basis %q", d.TierBasis)
		}
		if len(d.Tiers) == 0 {
			return NewConfigurationError("tiered discount has no tiers")
		}
		for _, tier := range d.Tiers {
			if tier.Threshold < 0 {
				return NewConfigurationError("tier threshold %d is negative", tier.Threshold)
			}
			if err := validScope(tier.Scope); err != nil {
				return err
			}
			if err := tier.Calculator.validate(currency); err != nil {
				return err
			}
		}
		return nil
	default:
		return NewConfigurationError("unknown discount kind %q", d.Kind)
	}
}

func (c Calculator) validate(currency string) error {
	switch c.Kind {
	case CalculatorPercentOff:
		if c.PercentBasisPts < 0 || c.PercentBasisPts > 10000 {
			return NewConfigurationError("percentage %d basis points out of range", c.PercentBasisPts)
		}
		return nil
	case CalculatorAmountOff, CalculatorAmountOverride:
		if c.Amount.Currency == "" {
			return NewConfigurationError("%s discount is missing an amount", c.Kind)
		}
		if c.Amount.Currency != currency {
			return NewCurrencyMismatchError(currency, c.Amount.Currency)
		}
		if c.Amount.AmountCents < 0 {
			return NewConfigurationError("%s discount amount is negative", c.Kind)
		}
		return nil
	default:
		return NewConfigurationError("unknown calculator kind %q", c.Kind)
	}
}

func validScope(scope DiscountScope) error {
	switch scope {
	case ScopeAllItems, ScopeCheapest, ScopeEachItem, ScopeTotal:
		return nil
	default:
		return NewConfigurationError("unknown discount scope %q", scope)
	}
}

// Resolve maps the matched items to proposed price adjustments against
// their current running prices. It never mutates items; granting is the
// promotion evaluator's job. Items are processed in encounter order, which
// keeps cheapest-item tie-breaking and allocation stable.
func (d Discount) Resolve(matched []*Item) ([]PriceAdjustment, error) {
	if len(matched) == 0 {
		return nil, nil
	}

	switch d.Kind {
	case DiscountKindSimple:
		return resolveEach(matched, d.Calculator)
	case DiscountKindMixAndMatch:
		return resolveScoped(matched, d.Scope, d.Calculator)
	case DiscountKindTiered:
		tier, ok := d.selectTier(matched)
		if !ok {
			// No tier qualified; a normal no-discount outcome.
			return nil, nil
		}
		return resolveScoped(matched, tier.Scope, tier.Calculator)
	default:
		return nil, NewConfigurationError("unknown discount kind %q", d.Kind)
	}
}

// selectTier picks the tier with the highest threshold not exceeding the
// qualifying basis value.
func (d Discount) selectTier(matched []*Item) (DiscountTier, bool) {
	var basis int64
	switch d.TierBasis {
	case TierBasisQuantity:
		basis = int64(len(matched))
	default:
		for _, item := range matched {
			basis += item.RunningPrice.AmountCents
		}
	}

	var best DiscountTier
	found := false
	for _, tier := range d.Tiers {
		if tier.Threshold > basis {
			continue
		}
		if !found || tier.Threshold > best.Threshold {
			best = tier
			found = true
		}
	}
	return best, found
}

func resolveScoped(matched []*Item, scope DiscountScope, calc Calculator) ([]PriceAdjustment, error) {
	switch scope {
	case ScopeEachItem:
		return resolveEach(matched, calc)
	case ScopeCheapest:
		return resolveEach([]*Item{cheapestItem(matched)}, calc)
	case ScopeAllItems, ScopeTotal:
		return resolveAcrossSet(matched, calc)
	default:
		return nil, NewConfigurationError("unknown discount scope %q", scope)
	}
}

// resolveEach applies the calculator to every item independently.
func resolveEach(items []*Item, calc Calculator) ([]PriceAdjustment, error) {
	adjustments := make([]PriceAdjustment, 0, len(items))
	for _, item := range items {
		newPrice, err := calc.apply(item.RunningPrice)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, PriceAdjustment{Item: item, NewPrice: newPrice})
	}
	return adjustments, nil
}

// resolveAcrossSet applies the calculator to the matched set as a whole.
// Percentages distribute naturally per item. Fixed amounts off are taken
// greedily in encounter order; a total override allocates the target amount
// proportionally with the rounding remainder on the first items.
func resolveAcrossSet(items []*Item, calc Calculator) ([]PriceAdjustment, error) {
	switch calc.Kind {
	case CalculatorPercentOff:
		return resolveEach(items, calc)
	case CalculatorAmountOff:
		remaining := calc.Amount.AmountCents
		adjustments := make([]PriceAdjustment, 0, len(items))
		for _, item := range items {
			if err := sameCurrency(item.RunningPrice, calc.Amount); err != nil {
				return nil, err
			}
			take := remaining
			if take > item.RunningPrice.AmountCents {
				take = item.RunningPrice.AmountCents
			}
			remaining -= take
			adjustments = append(adjustments, PriceAdjustment{
				Item:     item,
				NewPrice: NewMoney(item.RunningPrice.AmountCents-take, item.RunningPrice.Currency),
			})
		}
		return adjustments, nil
	case CalculatorAmountOverride:
		return allocateTotal(items, calc.Amount)
	default:
		return nil, NewConfigurationError("unknown calculator kind %q", calc.Kind)
	}
}

// allocateTotal sets the set's combined price to the target amount,
// splitting proportionally to current running prices and pushing the
// rounding remainder onto the earliest items.
func allocateTotal(items []*Item, target Money) ([]PriceAdjustment, error) {
	var setTotal int64
	for _, item := range items {
		if err := sameCurrency(item.RunningPrice, target); err != nil {
			return nil, err
		}
		setTotal += item.RunningPrice.AmountCents
	}

	// The override replaces the set's combined price regardless of the
	// original total, floored at zero.
	targetCents := target.AmountCents
	if targetCents < 0 {
		targetCents = 0
	}

	adjustments := make([]PriceAdjustment, len(items))
	allocated := int64(0)
	for i, item := range items {
		var share int64
		if setTotal > 0 {
			share = targetCents * item.RunningPrice.AmountCents / setTotal
		} else {
			// A fully zeroed set has no prices to weight by; split the
			// target evenly instead of abandoning it.
			share = targetCents / int64(len(items))
		}
		adjustments[i] = PriceAdjustment{
			Item:     item,
			NewPrice: NewMoney(share, item.RunningPrice.Currency),
		}
		allocated += share
	}

	// Distribute the integer-division remainder one cent at a time,
	// earliest items first.
	for i := 0; allocated < targetCents && i < len(adjustments); i++ {
		adjustments[i].NewPrice.AmountCents++
		allocated++
	}

	return adjustments, nil
}

// apply runs a calculator against a single price.
func (c Calculator) apply(price Money) (Money, error) {
	switch c.Kind {
	case CalculatorPercentOff:
		return price.ApplyPercentOff(c.PercentBasisPts), nil
	case CalculatorAmountOff:
		return price.Sub(c.Amount)
	case CalculatorAmountOverride:
		if err := sameCurrency(price, c.Amount); err != nil {
			return Money{}, err
		}
		override := c.Amount.AmountCents
		if override < 0 {
			override = 0
		}
		return NewMoney(override, price.Currency), nil
	default:
		return Money{}, NewConfigurationError("unknown calculator kind %q", c.Kind)
	}
}

// cheapestItem returns the minimum-priced item, breaking ties by first
// encountered order.
func cheapestItem(items []*Item) *Item {
	cheapest := items[0]
	for _, item := range items[1:] {
		if item.RunningPrice.AmountCents < cheapest.RunningPrice.AmountCents {
			cheapest = item
		}
	}
	return cheapest
}

func sameCurrency(a, b Money) error {
	if a.Currency != b.Currency {
		return NewCurrencyMismatchError(a.Currency, b.Currency)
	}
	return nil
}
