package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	fixedTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	t.Run("Valid account", func(t *testing.T) {
		account, err := NewAccount(1, mockTime)

		require.NoError(t, err)
		assert.Equal(t, uint64(1), account.UserID)
		assert.Equal(t, Money(0), account.Balance)
		assert.Equal(t, fixedTime, account.CreatedAt)
	})

	t.Run("Zero ID should return error", func(t *testing.T) {
		account, err := NewAccount(0, mockTime)

		assert.True(t, errs.IsValidationError(err))
		assert.Nil(t, account)
	})
}

func TestAccount_Apply(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	later := start.Add(time.Minute)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(start).Once()
	mockTime.EXPECT().Now().Return(later).Once()

	account, err := NewAccount(5, mockTime)
	require.NoError(t, err)

	account.Apply(&BalanceTransaction{ID: "tx-3", Seq: 3, Amount: 2000000, BalanceBefore: 0, BalanceAfter: 2000000}, mockTime)

	assert.Equal(t, Money(2000000), account.Balance)
	assert.Equal(t, uint64(1), account.EntryCount)
	assert.Equal(t, "tx-3", account.LastEntry)
	assert.Equal(t, later, account.UpdatedAt)
}
