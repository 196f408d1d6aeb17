package config

import (
	"encoding/json"
	"math"

	"github.com/promostack/promostack-api/internal/engine"
)

// DiscountDocument is the serialized form of a discount definition, stored
// as JSON on promotion rows and written inline in YAML stack fixtures.
// Percentages appear as decimal percentages here and are held as basis
// points inside the engine, so repeated persistence round-trips cannot
// drift.
type DiscountDocument struct {
	Kind       string              `json:"kind" yaml:"kind"`
	Calculator *CalculatorDocument `json:"calculator,omitempty" yaml:"calculator,omitempty"`
	Scope      string              `json:"scope,omitempty" yaml:"scope,omitempty"`
	TierBasis  string              `json:"tier_basis,omitempty" yaml:"tier_basis,omitempty"`
	Tiers      []TierDocument      `json:"tiers,omitempty" yaml:"tiers,omitempty"`
}

// CalculatorDocument is one price adjustment in serialized form.
type CalculatorDocument struct {
	Kind        string   `json:"kind" yaml:"kind"`
	Percent     *float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
	AmountCents *int64   `json:"amount_cents,omitempty" yaml:"amount_cents,omitempty"`
	Currency    string   `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// TierDocument is one rung of a tiered-threshold discount in serialized
// form.
type TierDocument struct {
	Threshold  int64              `json:"threshold" yaml:"threshold"`
	Scope      string             `json:"scope" yaml:"scope"`
	Calculator CalculatorDocument `json:"calculator" yaml:"calculator"`
}

// PercentToBasisPoints converts a decimal percentage (10.5 = 10.5%) to
// integer basis points.
func PercentToBasisPoints(percent float64) int32 {
	return int32(math.Round(percent * 100))
}

// BasisPointsToPercent converts basis points back to a decimal percentage
// for API responses.
func BasisPointsToPercent(basisPoints int32) float64 {
	return float64(basisPoints) / 100
}

// ParseDiscountDocument decodes a stored discount JSON document into the
// engine's representation. The stack currency is the default for amounts
// that omit one.
func ParseDiscountDocument(raw []byte, currency string) (engine.Discount, error) {
	var doc DiscountDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return engine.Discount{}, engine.NewConfigurationError("malformed discount document: %v", err)
	}
	return doc.ToEngine(currency)
}

// ToEngine maps the document to the engine's discount representation,
// rejecting missing required fields.
func (d DiscountDocument) ToEngine(currency string) (engine.Discount, error) {
	discount := engine.Discount{
		Kind:      engine.DiscountKind(d.Kind),
		Scope:     engine.DiscountScope(d.Scope),
		TierBasis: engine.TierBasis(d.TierBasis),
	}

	switch discount.Kind {
	case engine.DiscountKindSimple, engine.DiscountKindMixAndMatch:
		if d.Calculator == nil {
			return engine.Discount{}, engine.NewConfigurationError("%s discount is missing a calculator", d.Kind)
		}
		calculator, err := d.Calculator.toEngine(currency)
		if err != nil {
			return engine.Discount{}, err
		}
		discount.Calculator = calculator
	case engine.DiscountKindTiered:
		if discount.TierBasis == "" {
			discount.TierBasis = engine.TierBasisAmount
		}
		for _, tier := range d.Tiers {
			calculator, err := tier.Calculator.toEngine(currency)
			if err != nil {
				return engine.Discount{}, err
			}
			discount.Tiers = append(discount.Tiers, engine.DiscountTier{
				Threshold:  tier.Threshold,
				Scope:      engine.DiscountScope(tier.Scope),
				Calculator: calculator,
			})
		}
	default:
		return engine.Discount{}, engine.NewConfigurationError("unknown discount kind %q", d.Kind)
	}

	return discount, nil
}

func (c CalculatorDocument) toEngine(currency string) (engine.Calculator, error) {
	calculator := engine.Calculator{Kind: engine.CalculatorKind(c.Kind)}

	switch calculator.Kind {
	case engine.CalculatorPercentOff:
		if c.Percent == nil {
			return engine.Calculator{}, engine.NewConfigurationError("percent_off calculator is missing a percent")
		}
		calculator.PercentBasisPts = PercentToBasisPoints(*c.Percent)
	case engine.CalculatorAmountOff, engine.CalculatorAmountOverride:
		if c.AmountCents == nil {
			return engine.Calculator{}, engine.NewConfigurationError("%s calculator is missing amount_cents", c.Kind)
		}
		amountCurrency := c.Currency
		if amountCurrency == "" {
			amountCurrency = currency
		}
		calculator.Amount = engine.NewMoney(*c.AmountCents, amountCurrency)
	default:
		return engine.Calculator{}, engine.NewConfigurationError("unknown calculator kind %q", c.Kind)
	}

	return calculator, nil
}
