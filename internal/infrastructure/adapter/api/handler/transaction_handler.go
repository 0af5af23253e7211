package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/dto"
)

// TransactionHandler handles ledger HTTP requests
type TransactionHandler struct {
	ledger usecase.LedgerUseCase
	logger coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(ledger usecase.LedgerUseCase, logger coreport.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledger: ledger,
		logger: logger,
	}
}

// Record handles POST /users/:userId/transactions
func (h *TransactionHandler) Record(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := entity.ParseMoney(req.Amount)
	if err != nil {
		respondError(c, h.logger, "record_transaction", err)
		return
	}

	tx, err := h.ledger.Record(c.Request.Context(), entity.NewTransaction{
		ID:                req.TransactionID,
		UserID:            userID,
		Type:              entity.TransactionType(req.Type),
		Amount:            amount,
		Description:       req.Description,
		RelatedEntityType: req.RelatedEntityType,
		RelatedEntityID:   req.RelatedEntityID,
		Pending:           req.Pending,
	})
	if err != nil {
		respondError(c, h.logger, "record_transaction", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Get handles GET /transactions/:transactionId
func (h *TransactionHandler) Get(c *gin.Context) {
	tx, err := h.ledger.Get(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		respondError(c, h.logger, "get_transaction", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Settle handles POST /transactions/:transactionId/settle
func (h *TransactionHandler) Settle(c *gin.Context) {
	tx, err := h.ledger.Settle(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		respondError(c, h.logger, "settle_transaction", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Void handles POST /transactions/:transactionId/void
func (h *TransactionHandler) Void(c *gin.Context) {
	var req dto.VoidRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.ledger.Void(c.Request.Context(), c.Param("transactionId"), entity.TransactionStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, "void_transaction", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// List handles GET /users/:userId/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	filter, err := transactionFilter(c)
	if err != nil {
		respondError(c, h.logger, "list_transactions", err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		respondError(c, h.logger, "list_transactions", err)
		return
	}

	seq, err := h.ledger.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, "list_transactions", err)
		return
	}
	txs, err := collect(seq, limit)
	if err != nil {
		respondError(c, h.logger, "list_transactions", err)
		return
	}

	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, dto.NewTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, out)
}

// Export handles GET /users/:userId/transactions/export
func (h *TransactionHandler) Export(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	filter, err := transactionFilter(c)
	if err != nil {
		respondError(c, h.logger, "export_transactions", err)
		return
	}

	seq, err := h.ledger.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, "export_transactions", err)
		return
	}
	writeCSV(c, h.logger, fmt.Sprintf("transactions-%d.csv", userID), dto.TransactionCSVHeader, seq, dto.TransactionCSVRow)
}

func transactionFilter(c *gin.Context) (entity.TransactionFilter, error) {
	from, err := parseTime("dateFrom", c.Query("dateFrom"))
	if err != nil {
		return entity.TransactionFilter{}, err
	}
	to, err := parseTime("dateTo", c.Query("dateTo"))
	if err != nil {
		return entity.TransactionFilter{}, err
	}
	return entity.TransactionFilter{
		Type:     entity.TransactionType(c.Query("type")),
		Status:   entity.TransactionStatus(c.Query("status")),
		DateFrom: from,
		DateTo:   to,
	}, nil
}
