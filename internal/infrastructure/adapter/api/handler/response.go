package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/dto"
)

// StatusCode maps a domain error onto an HTTP status
func StatusCode(err error) int {
	switch {
	case errs.IsValidationError(err):
		return http.StatusBadRequest
	case errs.IsInsufficientBalanceError(err):
		return http.StatusUnprocessableEntity
	case errs.IsStateTransitionError(err), errs.IsDuplicateTransactionError(err):
		return http.StatusConflict
	case errs.IsNotFoundError(err):
		return http.StatusNotFound
	case errs.ErrorCode(err) == errs.CodeShuttingDown:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Server errors are logged with their
// fields and answered with a generic message.
func respondError(c *gin.Context, logger coreport.Logger, operation string, err error) {
	status := StatusCode(err)
	requestID := coreport.RequestID(c.Request.Context())

	fields := errs.LogFields(err)
	fields["operation"] = operation
	fields["request_id"] = requestID
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		fields["error"] = err.Error()
		logger.Error("Request failed", fields)
		message := "Internal server error"
		if status == http.StatusServiceUnavailable {
			message = "Service is shutting down"
		}
		c.JSON(status, dto.ErrorResponse{Code: errs.ErrorCode(err), Message: message, RequestID: requestID})
		return
	}

	resp := dto.ErrorResponse{Code: errs.ErrorCode(err), Message: err.Error(), RequestID: requestID}
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	logger.Debug("Request rejected", fields)
	c.JSON(status, resp)
}

// parseUserID reads the :userId path parameter, answering 400 when it is not a positive integer
func parseUserID(c *gin.Context) (uint64, bool) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:      errs.CodeValidation,
			Message:   "Invalid user ID format",
			Field:     "userId",
			RequestID: coreport.RequestID(c.Request.Context()),
		})
		return 0, false
	}
	return userID, true
}

// bindJSON decodes the body into req, answering 400 on malformed input
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:      errs.CodeValidation,
			Message:   "Invalid request format: " + err.Error(),
			RequestID: coreport.RequestID(c.Request.Context()),
		})
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty
func bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}
