package moderation

import (
	"context"
	"fmt"
	"strings"
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
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/memory"
	mockcore "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
	mocknotification "github.com/amirhossein-jamali/promo-ledger/mocks/port/notification"
)

type fixture struct {
	engine     *Engine
	ledger     *ledger.Service
	uow        persistence.UnitOfWork
	dispatcher *mocknotification.MockDispatcher
}

func newFixture(t *testing.T) *fixture {
	mockLogger := mockcore.NewMockLogger(t)
	mockLogger.EXPECT().Debug(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Info(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()

	var clockMu sync.Mutex
	now := time.Date(2024, 11, 5, 15, 0, 0, 0, time.UTC)
	mockTime := mockcore.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().RunAndReturn(func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		now = now.Add(time.Second)
		return now
	}).Maybe()

	var counter atomic.Int64
	mockIDs := mockcore.NewMockIDGenerator(t)
	mockIDs.EXPECT().NewID().RunAndReturn(func() string {
		return fmt.Sprintf("item-%03d", counter.Add(1))
	}).Maybe()

	uow := memory.NewUnitOfWork(memory.NewStore(mockTime, mockLogger))
	queues := serial.NewManager(mockLogger, 100)
	t.Cleanup(queues.Shutdown)

	ledgerService := ledger.NewService(uow, queues, mockIDs, mockTime, mockLogger, 100)
	dispatcher := mocknotification.NewMockDispatcher(t)

	return &fixture{
		engine: NewEngine(uow, queues, ledgerService, dispatcher, entity.DefaultFeePolicy(),
			mockIDs, mockTime, mockLogger),
		ledger:     ledgerService,
		uow:        uow,
		dispatcher: dispatcher,
	}
}

func (f *fixture) credit(t *testing.T, userID uint64, amount entity.Money) {
	_, err := f.ledger.Record(context.Background(), entity.NewTransaction{
		UserID: userID, Type: entity.TypeDonation, Amount: amount, Description: "fan donation",
	})
	require.NoError(t, err)
}

func TestEngine_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("Charges fee and notifies owner", func(t *testing.T) {
		f := newFixture(t)
		f.credit(t, 5, entity.MajorUnits(20000))
		item, err := f.engine.Register(ctx, 5, entity.KindTrack, "Midnight Train")
		require.NoError(t, err)

		f.dispatcher.EXPECT().Dispatch(mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
			return n.UserID == 5 && n.Type == entity.NotificationTrackApproved
		})).Return(nil).Once()

		approved, err := f.engine.Approve(ctx, item.ID, "good mix")
		require.NoError(t, err)
		assert.Equal(t, entity.ModerationApproved, approved.Status)
		assert.Equal(t, "good mix", approved.ModerationNote)

		fee, err := f.ledger.Get(ctx, FeeEntryID(item.ID))
		require.NoError(t, err)
		assert.Equal(t, entity.TypeFee, fee.Type)
		assert.Equal(t, "-5000.00", fee.Amount.String())
		assert.Equal(t, entity.RelatedContentItem, fee.RelatedEntityType)
		assert.Equal(t, item.ID, fee.RelatedEntityID)

		balance, err := f.ledger.GetBalance(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "15000.00", balance.String())
	})

	t.Run("Second approval is refused without a second fee", func(t *testing.T) {
		f := newFixture(t)
		f.credit(t, 5, entity.MajorUnits(20000))
		item, err := f.engine.Register(ctx, 5, entity.KindVideo, "Live at Club")
		require.NoError(t, err)
		f.dispatcher.EXPECT().Dispatch(mock.Anything, mock.Anything).Return(nil).Once()

		_, err = f.engine.Approve(ctx, item.ID, "")
		require.NoError(t, err)
		_, err = f.engine.Approve(ctx, item.ID, "")
		assert.True(t, errs.IsStateTransitionError(err))

		balance, _ := f.ledger.GetBalance(ctx, 5)
		assert.Equal(t, "15000.00", balance.String())
	})

	t.Run("Fee failure keeps item pending", func(t *testing.T) {
		f := newFixture(t)
		f.credit(t, 5, entity.MajorUnits(100))
		item, err := f.engine.Register(ctx, 5, entity.KindTrack, "Demo")
		require.NoError(t, err)

		_, err = f.engine.Approve(ctx, item.ID, "")
		assert.True(t, errs.IsInsufficientBalanceError(err))

		stored, err := f.uow.GetContentRepository(ctx).GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ModerationPending, stored.Status)
		_, err = f.ledger.Get(ctx, FeeEntryID(item.ID))
		assert.True(t, errs.IsNotFoundError(err))
	})

	t.Run("Unknown and placeholder items", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.Approve(ctx, "missing", "")
		assert.True(t, errs.IsNotFoundError(err))

		require.NoError(t, f.uow.GetContentRepository(ctx).Create(ctx, &entity.ContentItem{
			ID: "demo-1", OwnerID: 5, Kind: entity.KindTrack, Title: "Sample", Status: entity.ModerationPending, Placeholder: true,
		}))
		_, err = f.engine.Approve(ctx, "demo-1", "")
		assert.True(t, errs.IsNotFoundError(err))

		balance, _ := f.ledger.GetBalance(ctx, 5)
		assert.Equal(t, entity.Money(0), balance)
	})
}

func TestEngine_Reject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credit(t, 8, entity.MajorUnits(1000))
	item, err := f.engine.Register(ctx, 8, entity.KindTrack, "Loud Song")
	require.NoError(t, err)

	_, err = f.engine.Reject(ctx, item.ID, "  ")
	assert.True(t, errs.IsValidationError(err))

	f.dispatcher.EXPECT().Dispatch(mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return n.Type == entity.NotificationTrackRejected && n.UserID == 8 &&
			strings.Contains(n.Message, "clipping on master")
	})).Return(nil).Once()

	rejected, err := f.engine.Reject(ctx, item.ID, "clipping on master")
	require.NoError(t, err)
	assert.Equal(t, entity.ModerationRejected, rejected.Status)

	balance, _ := f.ledger.GetBalance(ctx, 8)
	assert.Equal(t, "1000.00", balance.String())
}
