package engine

import "fmt"

// Money represents a monetary amount in minor units (cents, pence, etc.)
// for a single currency. All arithmetic is integer arithmetic; percentage
// application rounds half-up to the nearest minor unit.
type Money struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// NewMoney creates a Money value in the given currency.
func NewMoney(amountCents int64, currency string) Money {
	return Money{AmountCents: amountCents, Currency: currency}
}

// Add returns the sum of two amounts. Mixing currencies is an error.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, NewCurrencyMismatchError(m.Currency, other.Currency)
	}
	return Money{AmountCents: m.AmountCents + other.AmountCents, Currency: m.Currency}, nil
}

// Sub returns m minus other, floored at zero. Mixing currencies is an error.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, NewCurrencyMismatchError(m.Currency, other.Currency)
	}
	result := m.AmountCents - other.AmountCents
	if result < 0 {
		result = 0
	}
	return Money{AmountCents: result, Currency: m.Currency}, nil
}

// ApplyPercentOff applies a percentage discount expressed in basis points
// (1/100 of a percent) and returns the discounted amount, rounded half-up.
// 1000 basis points = 10%.
func (m Money) ApplyPercentOff(basisPoints int32) Money {
	remaining := int64(10000) - int64(basisPoints)
	if remaining < 0 {
		remaining = 0
	}
	discounted := roundHalfUpDiv(m.AmountCents*remaining, 10000)
	return Money{AmountCents: discounted, Currency: m.Currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.AmountCents == 0
}

// String formats the amount for logs and error messages.
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.AmountCents, m.Currency)
}

// roundHalfUpDiv divides numerator by denominator rounding half-up.
// Both values are expected to be non-negative.
func roundHalfUpDiv(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}
