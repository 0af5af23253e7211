package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardDetails = PaymentDetails{"cardNumber": "4111 1111 1111 1111", "cardHolder": "IVAN PETROV"}

func TestCheckNumberByLuhn(t *testing.T) {
	testCases := []struct {
		number string
		valid  bool
	}{
		{"4111111111111111", true},
		{"4242424242424242", true},
		{"79927398713", true},
		{"4111111111111112", false},
		{"41111111a1111111", false},
	}

	for _, tc := range testCases {
		t.Run(tc.number, func(t *testing.T) {
			assert.Equal(t, tc.valid, CheckNumberByLuhn(tc.number))
		})
	}
}

func TestPaymentDetails_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		method  PaymentMethod
		details PaymentDetails
		field   string
	}{
		{"Card ok", MethodCard, cardDetails, ""},
		{"Card bad checksum", MethodCard, PaymentDetails{"cardNumber": "4111111111111112", "cardHolder": "X"}, "paymentDetails.cardNumber"},
		{"Card missing holder", MethodCard, PaymentDetails{"cardNumber": "4111111111111111"}, "paymentDetails.cardHolder"},
		{"Bank transfer ok", MethodBankTransfer, PaymentDetails{"accountNumber": "40817810099910004312", "bik": "044525225", "recipientName": "Ivan"}, ""},
		{"Bank transfer missing bik", MethodBankTransfer, PaymentDetails{"accountNumber": "40817810099910004312", "recipientName": "Ivan"}, "paymentDetails.bik"},
		{"YooMoney ok", MethodYooMoney, PaymentDetails{"walletNumber": "410011234567890"}, ""},
		{"Qiwi blank phone", MethodQiwi, PaymentDetails{"phoneNumber": "  "}, "paymentDetails.phoneNumber"},
		{"WebMoney ok", MethodWebMoney, PaymentDetails{"purse": "R123456789012"}, ""},
		{"Unknown method", PaymentMethod("paypal"), PaymentDetails{}, "paymentMethod"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.details.Validate(tc.method)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *errs.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCanTransition(t *testing.T) {
	all := []WithdrawalStatus{WithdrawalPending, WithdrawalApproved, WithdrawalProcessing,
		WithdrawalCompleted, WithdrawalRejected, WithdrawalCancelled}
	allowed := map[[2]WithdrawalStatus]bool{
		{WithdrawalPending, WithdrawalApproved}:     true,
		{WithdrawalPending, WithdrawalRejected}:     true,
		{WithdrawalPending, WithdrawalCancelled}:    true,
		{WithdrawalApproved, WithdrawalProcessing}:  true,
		{WithdrawalApproved, WithdrawalRejected}:    true,
		{WithdrawalApproved, WithdrawalCancelled}:   true,
		{WithdrawalProcessing, WithdrawalCompleted}: true,
		{WithdrawalProcessing, WithdrawalRejected}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]WithdrawalStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.True(t, WithdrawalCompleted.IsTerminal())
	assert.False(t, WithdrawalProcessing.IsTerminal())
}

func TestWithdrawalRequest_Lifecycle(t *testing.T) {
	fixedTime := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()
	policy := DefaultFeePolicy()

	newRequest := func(t *testing.T) *WithdrawalRequest {
		w, err := NewWithdrawalRequest("w-1", 1, 5000000, MethodCard, cardDetails, policy, mockTime)
		require.NoError(t, err)
		return w
	}

	t.Run("Below minimum", func(t *testing.T) {
		w, err := NewWithdrawalRequest("w-1", 1, 50000, MethodCard, cardDetails, policy, mockTime)
		assert.Nil(t, w)
		assert.True(t, errs.IsValidationError(err))
	})

	t.Run("Happy path", func(t *testing.T) {
		w := newRequest(t)
		assert.Equal(t, WithdrawalPending, w.Status)
		assert.Equal(t, "4111 1111 1111 1111", w.PaymentDetails["cardNumber"])

		require.NoError(t, w.Approve("checked", "admin-1", mockTime))
		assert.Equal(t, "admin-1", w.ProcessedBy)
		require.NotNil(t, w.ProcessedDate)

		require.NoError(t, w.StartProcessing(mockTime))
		require.NoError(t, w.CheckComplete())
		require.NoError(t, w.Complete("withdrawal:w-1", "TX1", "https://receipts/1", mockTime))
		assert.Equal(t, WithdrawalCompleted, w.Status)
		assert.Equal(t, "TX1", w.ExternalTransactionID)
		require.NotNil(t, w.CompletedDate)

		err := w.Complete("withdrawal:w-1", "TX1", "", mockTime)
		assert.True(t, errs.IsStateTransitionError(err))
	})

	t.Run("Reject requires reason before state check", func(t *testing.T) {
		w := newRequest(t)
		require.NoError(t, w.Cancel(mockTime))

		err := w.Reject("   ", mockTime)
		assert.True(t, errs.IsValidationError(err))
		assert.Equal(t, WithdrawalCancelled, w.Status)

		err = w.Reject("fraud", mockTime)
		assert.True(t, errs.IsStateTransitionError(err))
	})

	t.Run("Cancel from processing is refused", func(t *testing.T) {
		w := newRequest(t)
		require.NoError(t, w.Approve("", "admin", mockTime))
		require.NoError(t, w.StartProcessing(mockTime))

		err := w.Cancel(mockTime)
		var serr *errs.StateTransitionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "processing", serr.From)
		assert.Equal(t, WithdrawalProcessing, w.Status)

		require.NoError(t, w.Reject("bank refused", mockTime))
		assert.Equal(t, "bank refused", w.RejectionReason)
	})

	t.Run("Clone is independent", func(t *testing.T) {
		w := newRequest(t)
		c := w.Clone()
		c.PaymentDetails["cardHolder"] = "OTHER"
		assert.Equal(t, "IVAN PETROV", w.PaymentDetails["cardHolder"])
	})
}
