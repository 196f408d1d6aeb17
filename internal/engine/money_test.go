package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promostack/promostack-api/internal/engine"
	"github.com/promostack/promostack-api/internal/logger"
)

func init() {
	logger.InitLogger("test")
}

func TestMoney_Add(t *testing.T) {
	sum, err := engine.NewMoney(250, "USD").Add(engine.NewMoney(150, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(400), sum.AmountCents)
	assert.Equal(t, "USD", sum.Currency)

	_, err = engine.NewMoney(250, "USD").Add(engine.NewMoney(150, "EUR"))
	var mismatch *engine.CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "USD", mismatch.Left)
	assert.Equal(t, "EUR", mismatch.Right)
}

func TestMoney_Sub(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		subtract int64
		expected int64
	}{
		{name: "normal subtraction", amount: 500, subtract: 200, expected: 300},
		{name: "exact zero", amount: 500, subtract: 500, expected: 0},
		{name: "floors at zero", amount: 300, subtract: 500, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.NewMoney(tt.amount, "USD").Sub(engine.NewMoney(tt.subtract, "USD"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.AmountCents)
		})
	}

	_, err := engine.NewMoney(500, "USD").Sub(engine.NewMoney(100, "GBP"))
	assert.Error(t, err)
}

func TestMoney_ApplyPercentOff(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		basisPoints int32
		expected    int64
	}{
		{name: "10 percent off", amount: 1000, basisPoints: 1000, expected: 900},
		{name: "rounds half up", amount: 105, basisPoints: 1000, expected: 95},
		{name: "rounds half up on odd cents", amount: 999, basisPoints: 3333, expected: 666},
		{name: "zero percent", amount: 1000, basisPoints: 0, expected: 1000},
		{name: "full percent", amount: 1000, basisPoints: 10000, expected: 0},
		{name: "over 100 percent clamps", amount: 1000, basisPoints: 12000, expected: 0},
		{name: "tiny amount", amount: 1, basisPoints: 5000, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.NewMoney(tt.amount, "USD").ApplyPercentOff(tt.basisPoints)
			assert.Equal(t, tt.expected, result.AmountCents)
			assert.Equal(t, "USD", result.Currency)
		})
	}
}

func TestMoney_IsZero(t *testing.T) {
	assert.True(t, engine.NewMoney(0, "USD").IsZero())
	assert.False(t, engine.NewMoney(1, "USD").IsZero())
}
