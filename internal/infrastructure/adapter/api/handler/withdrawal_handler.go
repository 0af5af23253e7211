package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/dto"
)

// WithdrawalHandler handles withdrawal request HTTP requests
type WithdrawalHandler struct {
	withdrawals usecase.WithdrawalUseCase
	logger      coreport.Logger
}

// NewWithdrawalHandler creates a new withdrawal handler instance
func NewWithdrawalHandler(withdrawals usecase.WithdrawalUseCase, logger coreport.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawals: withdrawals,
		logger:      logger,
	}
}

func (h *WithdrawalHandler) respond(c *gin.Context, operation string, w *entity.WithdrawalRequest, err error) {
	if err != nil {
		respondError(c, h.logger, operation, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewWithdrawalResponse(w, h.withdrawals.Quote(w.Amount)))
}

// Create handles POST /users/:userId/withdrawals
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req dto.CreateWithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := entity.ParseMoney(req.Amount)
	if err != nil {
		respondError(c, h.logger, "create_withdrawal", err)
		return
	}

	w, err := h.withdrawals.Create(c.Request.Context(), usecase.CreateWithdrawalRequest{
		UserID:         userID,
		Amount:         amount,
		PaymentMethod:  entity.PaymentMethod(req.PaymentMethod),
		PaymentDetails: entity.PaymentDetails(req.PaymentDetails),
	})
	if err != nil {
		respondError(c, h.logger, "create_withdrawal", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewWithdrawalResponse(w, h.withdrawals.Quote(w.Amount)))
}

// Quote handles GET /withdrawals/quote?amount=
func (h *WithdrawalHandler) Quote(c *gin.Context) {
	amount, err := entity.ParseMoney(c.Query("amount"))
	if err == nil && amount <= 0 {
		err = errs.NewValidationError("amount", "must be positive")
	}
	if err != nil {
		respondError(c, h.logger, "quote_withdrawal", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(h.withdrawals.Quote(amount)))
}

// Get handles GET /withdrawals/:id
func (h *WithdrawalHandler) Get(c *gin.Context) {
	w, err := h.withdrawals.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, "get_withdrawal", w, err)
}

// Approve handles POST /withdrawals/:id/approve
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	var req dto.ApproveWithdrawalRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	w, err := h.withdrawals.Approve(c.Request.Context(), c.Param("id"), req.AdminNotes, req.ProcessedBy)
	h.respond(c, "approve_withdrawal", w, err)
}

// StartProcessing handles POST /withdrawals/:id/process
func (h *WithdrawalHandler) StartProcessing(c *gin.Context) {
	w, err := h.withdrawals.StartProcessing(c.Request.Context(), c.Param("id"))
	h.respond(c, "process_withdrawal", w, err)
}

// Complete handles POST /withdrawals/:id/complete
func (h *WithdrawalHandler) Complete(c *gin.Context) {
	var req dto.CompleteWithdrawalRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	w, err := h.withdrawals.Complete(c.Request.Context(), c.Param("id"), req.ExternalTransactionID, req.PaymentReceiptURL)
	h.respond(c, "complete_withdrawal", w, err)
}

// Reject handles POST /withdrawals/:id/reject
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	w, err := h.withdrawals.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	h.respond(c, "reject_withdrawal", w, err)
}

// Cancel handles POST /withdrawals/:id/cancel
func (h *WithdrawalHandler) Cancel(c *gin.Context) {
	w, err := h.withdrawals.Cancel(c.Request.Context(), c.Param("id"))
	h.respond(c, "cancel_withdrawal", w, err)
}

// List handles GET /users/:userId/withdrawals?status=pending,approved
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		respondError(c, h.logger, "list_withdrawals", err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		respondError(c, h.logger, "list_withdrawals", err)
		return
	}

	seq, err := h.withdrawals.List(c.Request.Context(), userID, statuses)
	if err != nil {
		respondError(c, h.logger, "list_withdrawals", err)
		return
	}
	requests, err := collect(seq, limit)
	if err != nil {
		respondError(c, h.logger, "list_withdrawals", err)
		return
	}

	out := make([]dto.WithdrawalResponse, 0, len(requests))
	for _, w := range requests {
		out = append(out, dto.NewWithdrawalResponse(w, h.withdrawals.Quote(w.Amount)))
	}
	c.JSON(http.StatusOK, out)
}

// Export handles GET /users/:userId/withdrawals/export
func (h *WithdrawalHandler) Export(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		respondError(c, h.logger, "export_withdrawals", err)
		return
	}

	seq, err := h.withdrawals.List(c.Request.Context(), userID, statuses)
	if err != nil {
		respondError(c, h.logger, "export_withdrawals", err)
		return
	}
	writeCSV(c, h.logger, fmt.Sprintf("withdrawals-%d.csv", userID), dto.WithdrawalCSVHeader, seq,
		func(w *entity.WithdrawalRequest) []string {
			return dto.WithdrawalCSVRow(w, h.withdrawals.Quote(w.Amount))
		})
}

func parseStatuses(raw string) ([]entity.WithdrawalStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var statuses []entity.WithdrawalStatus
	for _, part := range strings.Split(raw, ",") {
		status := entity.WithdrawalStatus(strings.TrimSpace(part))
		if !status.IsValid() {
			return nil, errs.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
