package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/dto"
)

// UserHandler serves per-user balance views
type UserHandler struct {
	balances usecase.BalanceUseCase
	currency string
	logger   coreport.Logger
}

// NewUserHandler creates a new user handler instance
func NewUserHandler(balances usecase.BalanceUseCase, currency string, logger coreport.Logger) *UserHandler {
	return &UserHandler{
		balances: balances,
		currency: currency,
		logger:   logger,
	}
}

// GetBalance handles GET /users/:userId/balance
func (h *UserHandler) GetBalance(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	summary, err := h.balances.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "get_balance", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBalanceResponse(summary, h.currency))
}

// GetStats handles GET /users/:userId/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	stats, err := h.balances.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "get_stats", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(stats, h.currency))
}
