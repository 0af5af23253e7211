package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/dto"
)

// ContentHandler handles content registration and moderation decisions
type ContentHandler struct {
	moderation usecase.ModerationUseCase
	logger     coreport.Logger
}

// NewContentHandler creates a new content handler instance
func NewContentHandler(moderation usecase.ModerationUseCase, logger coreport.Logger) *ContentHandler {
	return &ContentHandler{
		moderation: moderation,
		logger:     logger,
	}
}

// Register handles POST /users/:userId/content
func (h *ContentHandler) Register(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterContentRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.moderation.Register(c.Request.Context(), userID, entity.ContentKind(req.Kind), req.Title)
	if err != nil {
		respondError(c, h.logger, "register_content", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewContentResponse(item))
}

// Approve handles POST /content/:itemId/approve
func (h *ContentHandler) Approve(c *gin.Context) {
	var req dto.ApproveContentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	item, err := h.moderation.Approve(c.Request.Context(), c.Param("itemId"), req.Note)
	if err != nil {
		respondError(c, h.logger, "approve_content", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(item))
}

// Reject handles POST /content/:itemId/reject
func (h *ContentHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	item, err := h.moderation.Reject(c.Request.Context(), c.Param("itemId"), req.Reason)
	if err != nil {
		respondError(c, h.logger, "reject_content", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewContentResponse(item))
}
