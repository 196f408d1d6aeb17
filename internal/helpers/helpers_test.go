package helpers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promostack/promostack-api/internal/helpers"
)

func TestIsValidStage(t *testing.T) {
	assert.True(t, helpers.IsValidStage(helpers.StageProd))
	assert.True(t, helpers.IsValidStage(helpers.StageDev))
	assert.True(t, helpers.IsValidStage(helpers.StageLocal))
	assert.False(t, helpers.IsValidStage("staging"))
	assert.False(t, helpers.IsValidStage(""))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		expected string
	}{
		{name: "dollars", cents: 12345, currency: "USD", expected: "$123.45"},
		{name: "euros", cents: 500, currency: "EUR", expected: "€5.00"},
		{name: "pounds", cents: 450, currency: "GBP", expected: "£4.50"},
		{name: "unknown currency", cents: 999, currency: "SEK", expected: "9.99 SEK"},
		{name: "zero", cents: 0, currency: "USD", expected: "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, helpers.FormatAmount(tt.cents, tt.currency))
		})
	}
}
