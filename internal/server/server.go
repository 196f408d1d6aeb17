package server

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/promostack/promostack-api/internal/db"
	"github.com/promostack/promostack-api/internal/handlers"
	"github.com/promostack/promostack-api/internal/logger"
	"github.com/promostack/promostack-api/internal/services"
)

// Handler Definitions
var (
	stackHandler    *handlers.StackHandler
	cartHandler     *handlers.CartHandler
	pricingHandler  *handlers.PricingHandler
	backtestHandler *handlers.BacktestHandler

	// Database
	dbQueries *db.Queries
)

func InitializeHandlers() {
	// Get database connection string from environment
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	// Create a connection pool using pgxpool
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		logger.Fatal("Unable to parse database connection string", zap.Error(err))
	}

	// Configure the connection pool
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	// Create the connection pool
	connPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Fatal("Unable to create connection pool", zap.Error(err))
	}

	// Create queries instance with the connection pool
	dbQueries = db.New(connPool)

	pricingService := services.NewPricingService(dbQueries)
	commonServices := handlers.NewCommonServices(dbQueries, pricingService)

	// API Handler initialization
	stackHandler = handlers.NewStackHandler(commonServices)
	cartHandler = handlers.NewCartHandler(commonServices)
	pricingHandler = handlers.NewPricingHandler(commonServices)
	backtestHandler = handlers.NewBacktestHandler(commonServices)
}

func InitializeRoutes(router *gin.Engine) {
	// Configure and apply CORS middleware
	router.Use(configureCORS())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// if we are not in production, log the request body
	if os.Getenv("GIN_MODE") != "release" {
		router.Use(handlers.LogRequest())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(handlers.RateLimit(50, 100))
	{
		// Stacks
		stacks := v1.Group("/stacks")
		{
			stacks.GET("", stackHandler.ListStacks)
			stacks.GET("/:stack_id", stackHandler.GetStack)
			stacks.POST("/:stack_id/validate", stackHandler.ValidateStack)

			// Pricing
			stacks.POST("/:stack_id/price", pricingHandler.PriceItems)
			stacks.POST("/:stack_id/carts/:cart_id/price", pricingHandler.PriceCart)
		}

		// Carts
		v1.GET("/carts/:cart_id", cartHandler.GetCart)

		// Backtest runs
		v1.GET("/backtest-runs/:run_id", backtestHandler.GetBacktestRun)
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		// Split and trim the origins
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
