package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups the handlers served by the API
type Handlers struct {
	User        *handler.UserHandler
	Transaction *handler.TransactionHandler
	Withdrawal  *handler.WithdrawalHandler
	Content     *handler.ContentHandler
	Inbox       *handler.InboxHandler
	Health      *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Health)

	// User routes
	userRoutes := router.Group("/users/:userId")
	{
		userRoutes.GET("/balance", h.User.GetBalance)
		userRoutes.GET("/stats", h.User.GetStats)

		userRoutes.GET("/transactions", h.Transaction.List)
		userRoutes.GET("/transactions/export", h.Transaction.Export)
		userRoutes.POST("/transactions", h.Transaction.Record)

		userRoutes.GET("/withdrawals", h.Withdrawal.List)
		userRoutes.GET("/withdrawals/export", h.Withdrawal.Export)
		userRoutes.POST("/withdrawals", h.Withdrawal.Create)

		userRoutes.POST("/content", h.Content.Register)

		userRoutes.GET("/notifications", h.Inbox.List)
		userRoutes.POST("/notifications/:notificationId/read", h.Inbox.MarkRead)
	}

	transactionRoutes := router.Group("/transactions/:transactionId")
	{
		transactionRoutes.GET("", h.Transaction.Get)
		transactionRoutes.POST("/settle", h.Transaction.Settle)
		transactionRoutes.POST("/void", h.Transaction.Void)
	}

	router.GET("/withdrawals/quote", h.Withdrawal.Quote)
	withdrawalRoutes := router.Group("/withdrawals/:id")
	{
		withdrawalRoutes.GET("", h.Withdrawal.Get)
		withdrawalRoutes.POST("/approve", h.Withdrawal.Approve)
		withdrawalRoutes.POST("/process", h.Withdrawal.StartProcessing)
		withdrawalRoutes.POST("/complete", h.Withdrawal.Complete)
		withdrawalRoutes.POST("/reject", h.Withdrawal.Reject)
		withdrawalRoutes.POST("/cancel", h.Withdrawal.Cancel)
	}

	contentRoutes := router.Group("/content/:itemId")
	{
		contentRoutes.POST("/approve", h.Content.Approve)
		contentRoutes.POST("/reject", h.Content.Reject)
	}
}

// SetupMiddlewares configures global middlewares for the API.
// A nil limiter disables rate limiting.
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider, limiter *middleware.IPRateLimiter) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.RateLimiter(limiter))
}
