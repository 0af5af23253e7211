package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	mockcore "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
)

func newTestStore(t *testing.T) *Store {
	mockLogger := mockcore.NewMockLogger(t)
	mockLogger.EXPECT().Debug(mock.Anything, mock.Anything).Maybe()

	mockTime := mockcore.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Maybe()

	return NewStore(mockTime, mockLogger)
}

func entry(id string, userID uint64, createdAt time.Time) *entity.BalanceTransaction {
	return &entity.BalanceTransaction{
		ID: id, UserID: userID, Type: entity.TypeBonus, Amount: 100,
		Status: entity.StatusCompleted, CreatedAt: createdAt,
	}
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	uow := NewUnitOfWork(store)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Rollback discards writes", func(t *testing.T) {
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		assert.True(t, uow.HasTransaction(txCtx))

		require.NoError(t, uow.GetLedgerRepository(txCtx).Create(txCtx, entry("t-1", 1, at)))
		_, err = uow.GetLedgerRepository(txCtx).GetByID(txCtx, "t-1")
		require.NoError(t, err)

		require.NoError(t, uow.Rollback(txCtx))
		require.NoError(t, uow.Rollback(txCtx))
		assert.False(t, uow.HasTransaction(txCtx))

		_, err = uow.GetLedgerRepository(ctx).GetByID(ctx, "t-1")
		assert.True(t, errs.IsNotFoundError(err))
	})

	t.Run("Commit publishes writes", func(t *testing.T) {
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)

		account, err := uow.GetAccountRepository(txCtx).Lock(txCtx, 9)
		require.NoError(t, err)
		account.Balance = 500
		require.NoError(t, uow.GetAccountRepository(txCtx).Save(txCtx, account))
		require.NoError(t, uow.Commit(txCtx))

		stored, err := uow.GetAccountRepository(ctx).GetByUserID(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, entity.Money(500), stored.Balance)

		assert.Error(t, uow.Commit(txCtx))
	})

	t.Run("Read-only refuses writes", func(t *testing.T) {
		txCtx, err := uow.BeginReadOnly(ctx)
		require.NoError(t, err)
		defer func() { _ = uow.Rollback(txCtx) }()

		err = uow.GetLedgerRepository(txCtx).Create(txCtx, entry("t-2", 1, at))
		assert.ErrorIs(t, err, errReadOnly)
	})

	t.Run("Duplicate ids", func(t *testing.T) {
		repo := uow.GetLedgerRepository(ctx)
		require.NoError(t, repo.Create(ctx, entry("t-3", 1, at)))

		err := repo.Create(ctx, entry("t-3", 1, at))
		assert.True(t, errs.IsDuplicateTransactionError(err))
	})
}

func TestLedgerRepository_List(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork(newTestStore(t))
	repo := uow.GetLedgerRepository(ctx)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, entry("a", 1, at)))
	require.NoError(t, repo.Create(ctx, entry("b", 1, at)))
	require.NoError(t, repo.Create(ctx, entry("c", 1, at.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, entry("x", 2, at)))

	first, err := repo.List(ctx, 1, entity.TransactionFilter{}, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "c", first[0].ID)
	assert.Equal(t, "b", first[1].ID)

	rest, err := repo.List(ctx, 1, entity.TransactionFilter{}, entity.CursorOf(first[1]), 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "a", rest[0].ID)
}

func TestWithdrawalRepository_Aggregates(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork(newTestStore(t))
	repo := uow.GetWithdrawalRepository(ctx)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []entity.WithdrawalStatus{entity.WithdrawalPending, entity.WithdrawalProcessing, entity.WithdrawalCompleted} {
		require.NoError(t, repo.Create(ctx, &entity.WithdrawalRequest{
			ID: string(rune('a' + i)), UserID: 1, Amount: 1000, Status: status, CreatedAt: at,
		}))
	}

	reserved, err := repo.SumAmount(ctx, 1, entity.OutstandingWithdrawalStatuses)
	require.NoError(t, err)
	assert.Equal(t, entity.Money(2000), reserved)

	counts, err := repo.CountByStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[entity.WithdrawalCompleted])

	listed, err := repo.List(ctx, 1, []entity.WithdrawalStatus{entity.WithdrawalCompleted}, nil, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "c", listed[0].ID)
}

func TestWithdrawalRepository_SumAmountOverflow(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork(newTestStore(t))
	repo := uow.GetWithdrawalRepository(ctx)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, id := range []string{"a", "b"} {
		require.NoError(t, repo.Create(ctx, &entity.WithdrawalRequest{
			ID: id, UserID: 1, Amount: math.MaxInt64/2 + 1, Status: entity.WithdrawalPending, CreatedAt: at,
		}))
	}

	_, err := repo.SumAmount(ctx, 1, entity.OutstandingWithdrawalStatuses)
	assert.True(t, errs.IsValidationError(err))
}
