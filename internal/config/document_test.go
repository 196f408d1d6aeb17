package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promostack/promostack-api/internal/config"
	"github.com/promostack/promostack-api/internal/engine"
	"github.com/promostack/promostack-api/internal/logger"
)

func init() {
	logger.InitLogger("test")
}

func TestPercentConversion(t *testing.T) {
	tests := []struct {
		percent     float64
		basisPoints int32
	}{
		{percent: 10, basisPoints: 1000},
		{percent: 10.5, basisPoints: 1050},
		{percent: 0.01, basisPoints: 1},
		{percent: 100, basisPoints: 10000},
		{percent: 33.33, basisPoints: 3333},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.basisPoints, config.PercentToBasisPoints(tt.percent))
		assert.Equal(t, tt.percent, config.BasisPointsToPercent(tt.basisPoints))
	}
}

func TestParseDiscountDocument(t *testing.T) {
	t.Run("simple percent off", func(t *testing.T) {
		raw := []byte(`{"kind":"simple","calculator":{"kind":"percent_off","percent":12.5}}`)
		discount, err := config.ParseDiscountDocument(raw, "USD")
		require.NoError(t, err)
		assert.Equal(t, engine.DiscountKindSimple, discount.Kind)
		assert.Equal(t, engine.CalculatorPercentOff, discount.Calculator.Kind)
		assert.Equal(t, int32(1250), discount.Calculator.PercentBasisPts)
	})

	t.Run("amount off inherits stack currency", func(t *testing.T) {
		raw := []byte(`{"kind":"simple","calculator":{"kind":"amount_off","amount_cents":500}}`)
		discount, err := config.ParseDiscountDocument(raw, "EUR")
		require.NoError(t, err)
		assert.Equal(t, engine.NewMoney(500, "EUR"), discount.Calculator.Amount)
	})

	t.Run("mix and match with scope", func(t *testing.T) {
		raw := []byte(`{"kind":"mix_and_match","scope":"cheapest","calculator":{"kind":"percent_off","percent":50}}`)
		discount, err := config.ParseDiscountDocument(raw, "USD")
		require.NoError(t, err)
		assert.Equal(t, engine.DiscountKindMixAndMatch, discount.Kind)
		assert.Equal(t, engine.ScopeCheapest, discount.Scope)
	})

	t.Run("tiered with default amount basis", func(t *testing.T) {
		raw := []byte(`{
			"kind": "tiered_threshold",
			"tiers": [
				{"threshold": 5000, "scope": "each_item", "calculator": {"kind": "percent_off", "percent": 5}},
				{"threshold": 10000, "scope": "each_item", "calculator": {"kind": "percent_off", "percent": 10}}
			]
		}`)
		discount, err := config.ParseDiscountDocument(raw, "USD")
		require.NoError(t, err)
		assert.Equal(t, engine.TierBasisAmount, discount.TierBasis)
		require.Len(t, discount.Tiers, 2)
		assert.Equal(t, int64(5000), discount.Tiers[0].Threshold)
		assert.Equal(t, int32(1000), discount.Tiers[1].Calculator.PercentBasisPts)
	})

	t.Run("missing calculator rejected", func(t *testing.T) {
		raw := []byte(`{"kind":"simple"}`)
		_, err := config.ParseDiscountDocument(raw, "USD")
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("percent_off without percent rejected", func(t *testing.T) {
		raw := []byte(`{"kind":"simple","calculator":{"kind":"percent_off"}}`)
		_, err := config.ParseDiscountDocument(raw, "USD")
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		raw := []byte(`{"kind":"bogo"}`)
		_, err := config.ParseDiscountDocument(raw, "USD")
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := config.ParseDiscountDocument([]byte(`{not json`), "USD")
		var configErr *engine.ConfigurationError
		assert.ErrorAs(t, err, &configErr)
	})
}
