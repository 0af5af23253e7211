package routes

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/balance"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/inbox"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/moderation"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/withdrawal"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/memory"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/notifier"
	timeprovider "github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/time"
)

func newTestRouter(t *testing.T, limiter *middleware.IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logger.NewNoopLogger()
	tp := timeprovider.NewRealTimeProvider()
	ids := idgen.NewULIDGenerator(tp)
	policy := entity.DefaultFeePolicy()

	uow := memory.NewUnitOfWork(memory.NewStore(tp, log))
	queues := serial.NewManager(log, 100)
	t.Cleanup(queues.Shutdown)

	dispatcher := notifier.NewInboxStore(uow)

	ledgerSvc := ledger.NewService(uow, queues, ids, tp, log, 50)
	balanceSvc := balance.NewService(uow, ledgerSvc, tp, log)
	withdrawals := withdrawal.NewProcessor(uow, queues, ledgerSvc, balanceSvc, dispatcher, policy, ids, tp, log)
	moderationEngine := moderation.NewEngine(uow, queues, ledgerSvc, dispatcher, policy, ids, tp, log)

	router := gin.New()
	SetupMiddlewares(router, log, tp, limiter)
	SetupRoutes(router, Handlers{
		User:        handler.NewUserHandler(balanceSvc, "RUB", log),
		Transaction: handler.NewTransactionHandler(ledgerSvc, log),
		Withdrawal:  handler.NewWithdrawalHandler(withdrawals, log),
		Content:     handler.NewContentHandler(moderationEngine, log),
		Inbox:       handler.NewInboxHandler(inbox.NewService(uow), log),
		Health:      handler.NewHealthHandler(nil, log),
	})
	return router
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func credit(t *testing.T, router http.Handler, userID, id, amount string) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/users/"+userID+"/transactions", dto.TransactionRequest{
		TransactionID: id,
		Type:          string(entity.TypeDonation),
		Amount:        amount,
		Description:   "donation",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestWithdrawalFlow(t *testing.T) {
	router := newTestRouter(t, nil)
	credit(t, router, "1", "d-1", "125430")

	w := do(t, router, http.MethodPost, "/users/1/withdrawals", dto.CreateWithdrawalRequest{
		Amount:         "50000",
		PaymentMethod:  string(entity.MethodCard),
		PaymentDetails: map[string]string{"cardNumber": "4111111111111111", "cardHolder": "IVAN PETROV"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.WithdrawalResponse](t, w)
	assert.Equal(t, string(entity.WithdrawalPending), created.Status)
	assert.Equal(t, "1250.00", created.Fee)
	assert.Equal(t, "48750.00", created.NetAmount)

	w = do(t, router, http.MethodGet, "/users/1/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bal := decode[dto.BalanceResponse](t, w)
	assert.Equal(t, "125430.00", bal.Balance)
	assert.Equal(t, "75430.00", bal.AvailableBalance)
	assert.Equal(t, "RUB", bal.Currency)

	for _, step := range []string{"approve", "process"} {
		w = do(t, router, http.MethodPost, "/withdrawals/"+created.ID+"/"+step, nil)
		require.Equal(t, http.StatusOK, w.Code, step+": "+w.Body.String())
	}

	w = do(t, router, http.MethodPost, "/withdrawals/"+created.ID+"/complete", dto.CompleteWithdrawalRequest{
		ExternalTransactionID: "TX1",
		PaymentReceiptURL:     "https://receipts.example/TX1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := decode[dto.WithdrawalResponse](t, w)
	assert.Equal(t, string(entity.WithdrawalCompleted), completed.Status)
	require.NotEmpty(t, completed.TransactionID)

	w = do(t, router, http.MethodGet, "/transactions/"+completed.TransactionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entry := decode[dto.TransactionResponse](t, w)
	assert.Equal(t, "-50000.00", entry.Amount)
	assert.Equal(t, "75430.00", entry.BalanceAfter)

	w = do(t, router, http.MethodGet, "/users/1/balance", nil)
	bal = decode[dto.BalanceResponse](t, w)
	assert.Equal(t, "75430.00", bal.Balance)
	assert.Equal(t, "75430.00", bal.AvailableBalance)

	w = do(t, router, http.MethodGet, "/users/1/withdrawals?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.WithdrawalResponse](t, w), 1)

	w = do(t, router, http.MethodGet, "/users/1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[[]dto.NotificationResponse](t, w))
}

func TestModerationFlow(t *testing.T) {
	router := newTestRouter(t, nil)
	credit(t, router, "2", "d-2", "20000")

	w := do(t, router, http.MethodPost, "/users/2/content", dto.RegisterContentRequest{Kind: "track", Title: "Night Drive"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[dto.ContentResponse](t, w)

	w = do(t, router, http.MethodPost, "/content/"+item.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(entity.ModerationApproved), decode[dto.ContentResponse](t, w).Status)

	w = do(t, router, http.MethodGet, "/users/2/balance", nil)
	assert.Equal(t, "15000.00", decode[dto.BalanceResponse](t, w).Balance)

	w = do(t, router, http.MethodGet, "/users/2/transactions?type=fee", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fees := decode[[]dto.TransactionResponse](t, w)
	require.Len(t, fees, 1)
	assert.Equal(t, "-5000.00", fees[0].Amount)

	w = do(t, router, http.MethodGet, "/users/2/notifications?unread=true", nil)
	unread := decode[[]dto.NotificationResponse](t, w)
	require.Len(t, unread, 1)
	assert.Equal(t, entity.NotificationTrackApproved, unread[0].Type)

	w = do(t, router, http.MethodPost, "/users/2/notifications/"+unread[0].ID+"/read", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/users/2/notifications?unread=true", nil)
	assert.Empty(t, decode[[]dto.NotificationResponse](t, w))
}

func TestErrorStatusMapping(t *testing.T) {
	router := newTestRouter(t, nil)
	credit(t, router, "3", "d-3", "5000")

	w := do(t, router, http.MethodPost, "/users/3/withdrawals", dto.CreateWithdrawalRequest{
		Amount:         "2000",
		PaymentMethod:  string(entity.MethodQiwi),
		PaymentDetails: map[string]string{"phoneNumber": "+79001234567"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pending := decode[dto.WithdrawalResponse](t, w)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   int
		field  string
	}{
		{
			name:   "BelowMinimum",
			method: http.MethodPost, path: "/users/3/withdrawals",
			body: dto.CreateWithdrawalRequest{
				Amount: "500", PaymentMethod: "qiwi", PaymentDetails: map[string]string{"phoneNumber": "+79001234567"},
			},
			status: http.StatusBadRequest, code: errs.CodeValidation,
		},
		{
			name:   "InsufficientBalance",
			method: http.MethodPost, path: "/users/3/withdrawals",
			body: dto.CreateWithdrawalRequest{
				Amount: "4000", PaymentMethod: "qiwi", PaymentDetails: map[string]string{"phoneNumber": "+79001234567"},
			},
			status: http.StatusUnprocessableEntity, code: errs.CodeInsufficientBalance,
		},
		{
			name:   "CompletePending",
			method: http.MethodPost, path: "/withdrawals/" + pending.ID + "/complete",
			status: http.StatusConflict, code: errs.CodeStateTransition,
		},
		{
			name:   "RejectWithoutReason",
			method: http.MethodPost, path: "/withdrawals/" + pending.ID + "/reject",
			body:   dto.RejectRequest{},
			status: http.StatusBadRequest, code: errs.CodeValidation,
		},
		{
			name:   "UnknownWithdrawal",
			method: http.MethodGet, path: "/withdrawals/missing",
			status: http.StatusNotFound, code: errs.CodeNotFound,
		},
		{
			name:   "InvalidUserID",
			method: http.MethodGet, path: "/users/abc/balance",
			status: http.StatusBadRequest, code: errs.CodeValidation,
		},
		{
			name:   "BadDateFilter",
			method: http.MethodGet, path: "/users/3/transactions?dateFrom=yesterday",
			status: http.StatusBadRequest, code: errs.CodeValidation, field: "dateFrom",
		},
		{
			name:   "AmountAtInt64Limit",
			method: http.MethodPost, path: "/users/3/transactions",
			body: dto.TransactionRequest{
				TransactionID: "huge", Type: string(entity.TypeAdjustment), Amount: "92233720368547758.07", Description: "huge",
			},
			status: http.StatusBadRequest, code: errs.CodeValidation, field: "amount",
		},
		{
			name:   "IdTakenByAnotherUser",
			method: http.MethodPost, path: "/users/4/transactions",
			body: dto.TransactionRequest{
				TransactionID: "d-3", Type: string(entity.TypeDonation), Amount: "5000", Description: "donation",
			},
			status: http.StatusConflict, code: errs.CodeDuplicateTransaction,
		},
		{
			name:   "UnknownStatusFilter",
			method: http.MethodGet, path: "/users/3/withdrawals?status=paid",
			status: http.StatusBadRequest, code: errs.CodeValidation,
		},
		{
			name:   "ZeroQuote",
			method: http.MethodGet, path: "/withdrawals/quote?amount=0",
			status: http.StatusBadRequest, code: errs.CodeValidation,
		},
		{
			name:   "VoidWithBadStatus",
			method: http.MethodPost, path: "/transactions/d-3/void",
			body:   dto.VoidRequest{Status: "completed"},
			status: http.StatusBadRequest, code: errs.CodeValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, router, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			resp := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, tc.code, resp.Code)
			if tc.field != "" {
				assert.Equal(t, tc.field, resp.Field)
			}
			assert.NotEmpty(t, resp.RequestID)
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.RequestID)
		})
	}

	w = do(t, router, http.MethodGet, "/withdrawals/"+pending.ID, nil)
	assert.Equal(t, string(entity.WithdrawalPending), decode[dto.WithdrawalResponse](t, w).Status)
}

func TestQuote(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/withdrawals/quote?amount=10000", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quote := decode[dto.QuoteResponse](t, w)
	assert.Equal(t, "10000.00", quote.Amount)
	assert.Equal(t, "250.00", quote.Fee)
	assert.Equal(t, "9750.00", quote.NetAmount)
}

func TestTransactionExport(t *testing.T) {
	router := newTestRouter(t, nil)
	credit(t, router, "4", "d-a", "100")
	credit(t, router, "4", "d-b", "250.50")

	w := do(t, router, http.MethodGet, "/users/4/transactions/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions-4.csv")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, dto.TransactionCSVHeader, records[0])
	assert.Equal(t, "d-b", records[1][0])
	assert.Equal(t, "350.50", records[1][6])
	assert.Equal(t, "d-a", records[2][0])
}

func TestPendingSettleAndVoid(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/users/5/transactions", dto.TransactionRequest{
		TransactionID: "r-1", Type: "royalty", Amount: "300", Description: "royalty", Pending: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(entity.StatusPending), decode[dto.TransactionResponse](t, w).Status)

	w = do(t, router, http.MethodPost, "/transactions/r-1/settle", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "300.00", decode[dto.TransactionResponse](t, w).BalanceAfter)

	do(t, router, http.MethodPost, "/users/5/transactions", dto.TransactionRequest{
		TransactionID: "r-2", Type: "royalty", Amount: "40", Description: "royalty", Pending: true,
	})
	w = do(t, router, http.MethodPost, "/transactions/r-2/void", dto.VoidRequest{Status: "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(entity.StatusCancelled), decode[dto.TransactionResponse](t, w).Status)

	w = do(t, router, http.MethodGet, "/users/5/balance", nil)
	assert.Equal(t, "300.00", decode[dto.BalanceResponse](t, w).Balance)
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))

	w = do(t, router, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 2, timeprovider.NewRealTimeProvider())
	t.Cleanup(limiter.Stop)
	router := newTestRouter(t, limiter)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil).Code)

	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, errs.CodeRateLimited, resp.Code)
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.RequestID)
}
