package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/dto"
)

// InboxHandler serves a user's stored notifications
type InboxHandler struct {
	inbox  usecase.InboxUseCase
	logger coreport.Logger
}

// NewInboxHandler creates a new inbox handler instance
func NewInboxHandler(inbox usecase.InboxUseCase, logger coreport.Logger) *InboxHandler {
	return &InboxHandler{inbox: inbox, logger: logger}
}

// List handles GET /users/:userId/notifications?unread=true
func (h *InboxHandler) List(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	list, err := h.inbox.List(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		respondError(c, h.logger, "list_notifications", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewNotificationResponses(list))
}

// MarkRead handles POST /users/:userId/notifications/:notificationId/read
func (h *InboxHandler) MarkRead(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.inbox.MarkRead(c.Request.Context(), userID, c.Param("notificationId")); err != nil {
		respondError(c, h.logger, "mark_notification_read", err)
		return
	}
	c.Status(http.StatusNoContent)
}
