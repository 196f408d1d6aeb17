package engine

import "fmt"

// ConfigurationError indicates bad persisted promotion configuration: an
// unknown enum value, an unresolvable reference, or a missing required
// field. It is always fatal for the cart being processed and is never
// retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigurationError creates a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// GraphValidationError indicates that a promotion stack does not compile
// into a valid routing graph: a dangling layer reference, a missing root,
// or a routing cycle. It is surfaced before any item is processed.
type GraphValidationError struct {
	Reason string
}

func (e *GraphValidationError) Error() string {
	return "graph validation error: " + e.Reason
}

// NewGraphValidationError creates a GraphValidationError with a formatted reason.
func NewGraphValidationError(format string, args ...interface{}) *GraphValidationError {
	return &GraphValidationError{Reason: fmt.Sprintf(format, args...)}
}

// CurrencyMismatchError indicates that a computation would mix two
// currencies. The engine refuses to coerce currencies silently.
type CurrencyMismatchError struct {
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

// NewCurrencyMismatchError creates a CurrencyMismatchError for the two codes.
func NewCurrencyMismatchError(left, right string) *CurrencyMismatchError {
	return &CurrencyMismatchError{Left: left, Right: right}
}
