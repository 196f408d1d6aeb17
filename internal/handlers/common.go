package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/promostack/promostack-api/internal/db"
	"github.com/promostack/promostack-api/internal/engine"
	"github.com/promostack/promostack-api/internal/logger"
	"github.com/promostack/promostack-api/internal/services"
)

// CommonServices holds shared dependencies used across handlers
type CommonServices struct {
	db      db.Querier
	pricing *services.PricingService
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(db db.Querier, pricing *services.PricingService) *CommonServices {
	return &CommonServices{
		db:      db,
		pricing: pricing,
	}
}

// sendError logs the error and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleDBError maps storage errors to HTTP status codes
func handleDBError(c *gin.Context, err error, notFoundMsg string) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// handlePricingError maps pricing failures to HTTP status codes. Bad
// configuration and currency mismatches are the caller's problem, not the
// server's.
func handlePricingError(c *gin.Context, err error, notFoundMsg string) {
	var configErr *engine.ConfigurationError
	var graphErr *engine.GraphValidationError
	var currencyErr *engine.CurrencyMismatchError

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	case errors.As(err, &configErr), errors.As(err, &graphErr), errors.As(err, &currencyErr):
		sendError(c, http.StatusUnprocessableEntity, err.Error(), err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}
