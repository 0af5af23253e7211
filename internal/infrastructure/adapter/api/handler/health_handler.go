package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// Pinger checks a dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse reports liveness and storage reachability
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	storage Pinger
	logger  coreport.Logger
}

// NewHealthHandler creates a health handler. A nil storage pinger reports in-memory storage.
func NewHealthHandler(storage Pinger, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Storage: "memory"})
		return
	}

	if err := h.storage.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Health check failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Storage: "unreachable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Storage: "up"})
}
