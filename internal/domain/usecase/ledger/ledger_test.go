package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/memory"
	mockcore "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
)

var baseTime = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	uow    persistence.UnitOfWork
	logger *mockcore.MockLogger
}

func quietLogger(t *testing.T) *mockcore.MockLogger {
	mockLogger := mockcore.NewMockLogger(t)
	mockLogger.EXPECT().Debug(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Info(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()
	return mockLogger
}

func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := baseTime
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newFixture(t *testing.T, clock func() time.Time, pageSize int) *fixture {
	mockLogger := quietLogger(t)

	mockTime := mockcore.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().RunAndReturn(clock).Maybe()

	var counter atomic.Int64
	mockIDs := mockcore.NewMockIDGenerator(t)
	mockIDs.EXPECT().NewID().RunAndReturn(func() string {
		return fmt.Sprintf("gen-%03d", counter.Add(1))
	}).Maybe()

	store := memory.NewStore(mockTime, mockLogger)
	uow := memory.NewUnitOfWork(store)
	queues := serial.NewManager(mockLogger, 100)
	t.Cleanup(queues.Shutdown)

	return &fixture{
		svc:    NewService(uow, queues, mockIDs, mockTime, mockLogger, pageSize),
		uow:    uow,
		logger: mockLogger,
	}
}

func credit(id string, userID uint64, amount entity.Money) entity.NewTransaction {
	return entity.NewTransaction{ID: id, UserID: userID, Type: entity.TypeDonation, Amount: amount, Description: "donation " + id}
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Entries chain balances", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)

		first, err := f.svc.Record(ctx, credit("d-1", 1, 2000000))
		require.NoError(t, err)
		assert.Equal(t, entity.Money(0), first.BalanceBefore)
		assert.Equal(t, entity.Money(2000000), first.BalanceAfter)

		fee, err := f.svc.Record(ctx, entity.NewTransaction{
			ID: "f-1", UserID: 1, Type: entity.TypeFee, Amount: -500000, Description: "moderation fee",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.Money(2000000), fee.BalanceBefore)
		assert.Equal(t, entity.Money(1500000), fee.BalanceAfter)
		assert.True(t, fee.IsConsistent())
		assert.Greater(t, fee.Seq, first.Seq)

		balance, err := f.svc.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.Money(1500000), balance)
	})

	t.Run("Same id is recorded once", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)

		first, err := f.svc.Record(ctx, credit("d-1", 1, 10000))
		require.NoError(t, err)
		again, err := f.svc.Record(ctx, credit("d-1", 1, 10000))
		require.NoError(t, err)

		assert.Equal(t, first, again)
		balance, _ := f.svc.GetBalance(ctx, 1)
		assert.Equal(t, entity.Money(10000), balance)
	})

	t.Run("Missing id is generated", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)

		tx, err := f.svc.Record(ctx, credit("", 1, 10000))
		require.NoError(t, err)
		assert.Equal(t, "gen-001", tx.ID)
	})

	t.Run("Overdraft appends nothing", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)
		_, err := f.svc.Record(ctx, credit("d-1", 1, 100000))
		require.NoError(t, err)

		_, err = f.svc.Record(ctx, entity.NewTransaction{
			ID: "w-1", UserID: 1, Type: entity.TypeWithdrawal, Amount: -100001, Description: "payout",
		})
		assert.True(t, errs.IsInsufficientBalanceError(err))

		_, err = f.svc.Get(ctx, "w-1")
		assert.True(t, errs.IsNotFoundError(err))
		balance, _ := f.svc.GetBalance(ctx, 1)
		assert.Equal(t, entity.Money(100000), balance)
	})

	t.Run("Adjustment may overdraw", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)

		tx, err := f.svc.Record(ctx, entity.NewTransaction{
			ID: "a-1", UserID: 1, Type: entity.TypeAdjustment, Amount: -300000, Description: "chargeback",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.Money(-300000), tx.BalanceAfter)
	})

	t.Run("Invalid input", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)

		testCases := []entity.NewTransaction{
			{ID: "x", UserID: 1, Type: entity.TypeDonation, Amount: 0, Description: "zero"},
			{ID: "x", UserID: 0, Type: entity.TypeDonation, Amount: 1, Description: "no user"},
			{ID: "x", UserID: 1, Type: "tip", Amount: 1, Description: "bad type"},
		}
		for _, tc := range testCases {
			_, err := f.svc.Record(ctx, tc)
			assert.True(t, errs.IsValidationError(err), "%+v", tc)
		}
	})

	t.Run("Id taken by another user is rejected", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)
		_, err := f.svc.Record(ctx, credit("d-1", 1, 10000))
		require.NoError(t, err)

		tx, err := f.svc.Record(ctx, credit("d-1", 2, 10000))
		assert.Nil(t, tx)
		var derr *errs.DuplicateTransactionError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, uint64(2), derr.UserID)

		balance, _ := f.svc.GetBalance(ctx, 2)
		assert.Equal(t, entity.Money(0), balance)
		stored, err := f.svc.Get(ctx, "d-1")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), stored.UserID)
	})
}

func TestService_AmountLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("Amounts past the maximum are rejected", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)
		_, err := f.svc.Record(ctx, credit("d-1", 1, 10000))
		require.NoError(t, err)

		for _, typ := range []entity.TransactionType{entity.TypeDonation, entity.TypeAdjustment} {
			for _, amount := range []entity.Money{math.MaxInt64, entity.MaxAmount + 1, -entity.MaxAmount - 1} {
				_, err := f.svc.Record(ctx, entity.NewTransaction{
					ID: fmt.Sprintf("%s-%d", typ, amount), UserID: 1, Type: typ, Amount: amount, Description: "huge",
				})
				assert.True(t, errs.IsValidationError(err), "%s %d", typ, amount)
			}
		}

		balance, _ := f.svc.GetBalance(ctx, 1)
		assert.Equal(t, entity.Money(10000), balance)
	})

	t.Run("Maximum amount is accepted", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)

		tx, err := f.svc.Record(ctx, credit("d-1", 1, entity.MaxAmount))
		require.NoError(t, err)
		assert.Equal(t, entity.MaxAmount, tx.BalanceAfter)
	})

	t.Run("Balance never wraps", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 0)
		_, err := f.svc.Record(ctx, credit("d-1", 1, 10000))
		require.NoError(t, err)

		// Seed a completed entry that leaves the balance near the int64 limit
		const near = entity.Money(math.MaxInt64 - 100)
		completed := baseTime
		seed := &entity.BalanceTransaction{
			ID: "seed", UserID: 1, Type: entity.TypeAdjustment, Status: entity.StatusCompleted,
			Amount: near - 10000, BalanceBefore: 10000, BalanceAfter: near,
			Description: "seed", CreatedAt: completed, CompletedAt: &completed,
		}
		require.NoError(t, f.uow.GetLedgerRepository(ctx).Create(ctx, seed))
		accounts := f.uow.GetAccountRepository(ctx)
		account, err := accounts.GetByUserID(ctx, 1)
		require.NoError(t, err)
		account.Balance = near
		account.LastEntry = "seed"
		require.NoError(t, accounts.Save(ctx, account))

		tx, err := f.svc.Record(ctx, entity.NewTransaction{
			ID: "a-1", UserID: 1, Type: entity.TypeAdjustment, Amount: 101, Description: "wrap",
		})
		assert.Nil(t, tx)
		assert.True(t, errs.IsValidationError(err))

		balance, err := f.svc.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, near, balance)
		_, err = f.svc.Get(ctx, "a-1")
		assert.True(t, errs.IsNotFoundError(err))
	})
}

func TestService_InvariantViolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tickingClock(), 0)
	f.logger.EXPECT().Error("Ledger invariant violated", mock.Anything).Once()

	_, err := f.svc.Record(ctx, credit("d-1", 1, 100000))
	require.NoError(t, err)

	// Corrupt the running total behind the ledger's back
	accounts := f.uow.GetAccountRepository(ctx)
	account, err := accounts.GetByUserID(ctx, 1)
	require.NoError(t, err)
	account.Balance += 5000
	require.NoError(t, accounts.Save(ctx, account))

	_, err = f.svc.Record(ctx, credit("d-2", 1, 100))
	var ierr *errs.InvariantViolationError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "1000.00", ierr.Expected)
	assert.Equal(t, "1050.00", ierr.Actual)

	_, err = f.svc.Get(ctx, "d-2")
	assert.True(t, errs.IsNotFoundError(err))
}

func TestService_PendingEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tickingClock(), 0)

	_, err := f.svc.Record(ctx, credit("d-1", 1, 50000))
	require.NoError(t, err)

	pending := credit("d-2", 1, 20000)
	pending.Pending = true
	tx, err := f.svc.Record(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, tx.Status)

	balance, _ := f.svc.GetBalance(ctx, 1)
	assert.Equal(t, entity.Money(50000), balance)

	_, err = f.svc.Record(ctx, credit("d-3", 1, 1000))
	require.NoError(t, err)

	settled, err := f.svc.Settle(ctx, "d-2")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, settled.Status)
	assert.Equal(t, entity.Money(51000), settled.BalanceBefore)
	assert.Equal(t, entity.Money(71000), settled.BalanceAfter)

	balance, _ = f.svc.GetBalance(ctx, 1)
	assert.Equal(t, entity.Money(71000), balance)

	_, err = f.svc.Settle(ctx, "d-2")
	assert.True(t, errs.IsStateTransitionError(err))

	// still consistent after a settlement out of insertion order
	_, err = f.svc.Record(ctx, credit("d-4", 1, 1))
	require.NoError(t, err)

	t.Run("Void leaves balance alone", func(t *testing.T) {
		p := credit("d-5", 1, 999)
		p.Pending = true
		_, err := f.svc.Record(ctx, p)
		require.NoError(t, err)

		voided, err := f.svc.Void(ctx, "d-5", entity.StatusFailed)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFailed, voided.Status)

		balance, _ := f.svc.GetBalance(ctx, 1)
		assert.Equal(t, entity.Money(71001), balance)

		_, err = f.svc.Settle(ctx, "d-5")
		assert.True(t, errs.IsStateTransitionError(err))
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := f.svc.Settle(ctx, "nope")
		assert.True(t, errs.IsNotFoundError(err))
	})
}

func collect(t *testing.T, seq func(func(*entity.BalanceTransaction, error) bool)) []string {
	var ids []string
	for tx, err := range seq {
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}
	return ids
}

func TestService_ListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("Newest first across pages and restartable", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 2)
		for i := 1; i <= 5; i++ {
			_, err := f.svc.Record(ctx, credit(fmt.Sprintf("d-%d", i), 1, 100))
			require.NoError(t, err)
		}
		_, err := f.svc.Record(ctx, credit("other", 2, 100))
		require.NoError(t, err)

		seq, err := f.svc.ListTransactions(ctx, 1, entity.TransactionFilter{})
		require.NoError(t, err)

		want := []string{"d-5", "d-4", "d-3", "d-2", "d-1"}
		assert.Equal(t, want, collect(t, seq))
		assert.Equal(t, want, collect(t, seq))

		var firstTwo []string
		for tx, err := range seq {
			require.NoError(t, err)
			firstTwo = append(firstTwo, tx.ID)
			if len(firstTwo) == 2 {
				break
			}
		}
		assert.Equal(t, want[:2], firstTwo)
	})

	t.Run("Ties ordered by sequence", func(t *testing.T) {
		f := newFixture(t, func() time.Time { return baseTime }, 2)
		for i := 1; i <= 3; i++ {
			_, err := f.svc.Record(ctx, credit(fmt.Sprintf("d-%d", i), 1, 100))
			require.NoError(t, err)
		}

		seq, err := f.svc.ListTransactions(ctx, 1, entity.TransactionFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"d-3", "d-2", "d-1"}, collect(t, seq))
	})

	t.Run("Filters", func(t *testing.T) {
		f := newFixture(t, tickingClock(), 10)
		_, err := f.svc.Record(ctx, credit("d-1", 1, 10000))
		require.NoError(t, err)
		_, err = f.svc.Record(ctx, entity.NewTransaction{ID: "f-1", UserID: 1, Type: entity.TypeFee, Amount: -100, Description: "fee"})
		require.NoError(t, err)
		_, err = f.svc.Record(ctx, credit("d-2", 1, 10000))
		require.NoError(t, err)

		byType, err := f.svc.ListTransactions(ctx, 1, entity.TransactionFilter{Type: entity.TypeDonation})
		require.NoError(t, err)
		assert.Equal(t, []string{"d-2", "d-1"}, collect(t, byType))

		d1, _ := f.svc.Get(ctx, "d-1")
		d2, _ := f.svc.Get(ctx, "d-2")
		window, err := f.svc.ListTransactions(ctx, 1, entity.TransactionFilter{DateFrom: &d1.CreatedAt, DateTo: &d2.CreatedAt})
		require.NoError(t, err)
		assert.Equal(t, []string{"f-1", "d-1"}, collect(t, window))

		_, err = f.svc.ListTransactions(ctx, 1, entity.TransactionFilter{DateFrom: &d2.CreatedAt, DateTo: &d1.CreatedAt})
		assert.True(t, errs.IsValidationError(err))
	})
}

func TestService_ConcurrentWritersKeepChain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tickingClock(), 1000)

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Record(ctx, credit(fmt.Sprintf("c-%02d", i), 1, entity.Money(100*(i+1))))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seq, err := f.svc.ListTransactions(ctx, 1, entity.TransactionFilter{})
	require.NoError(t, err)

	var entries []*entity.BalanceTransaction
	var sum entity.Money
	for tx, err := range seq {
		require.NoError(t, err)
		entries = append(entries, tx)
		sum += tx.Amount
	}
	require.Len(t, entries, writers)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	var running entity.Money
	for _, tx := range entries {
		assert.Equal(t, running, tx.BalanceBefore, tx.ID)
		running = tx.BalanceAfter
	}

	balance, err := f.svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sum, balance)
	assert.Equal(t, running, balance)
}
