package constants

// Deployment stages.
const (
	ProdEnvironment = "prod"
	DevEnvironment  = "dev"
	TestEnvironment = "test"
)

// Log levels referenced outside the logger package.
const (
	ErrorLevel = "error"
)

// Currency codes used across fixtures and defaults.
const (
	USDCurrency = "USD"
	EURCurrency = "EUR"
	GBPCurrency = "GBP"
)

// Processing statuses for backtest runs and their carts.
const (
	PendingStatus   = "pending"
	RunningStatus   = "running"
	CompletedStatus = "completed"
	FailedStatus    = "failed"
	SkippedStatus   = "skipped"
)
