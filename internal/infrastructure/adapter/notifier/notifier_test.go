package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/memory"
	mockcore "github.com/amirhossein-jamali/promo-ledger/mocks/port/core"
	mocknotification "github.com/amirhossein-jamali/promo-ledger/mocks/port/notification"
)

var createdAt = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func sample() *entity.Notification {
	return &entity.Notification{
		ID:        "n-1",
		UserID:    42,
		Type:      entity.NotificationTrackApproved,
		Title:     "Track approved",
		Message:   "Your track is live.",
		CreatedAt: createdAt,
	}
}

type fakeRedis struct {
	channel string
	message any
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.message = message
	return redis.NewIntResult(1, f.err)
}

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestRedisPublisher_Dispatch(t *testing.T) {
	t.Run("Publishes JSON on channel", func(t *testing.T) {
		client := &fakeRedis{}
		require.NoError(t, NewRedisPublisher(client, "").Dispatch(context.Background(), sample()))

		assert.Equal(t, DefaultRedisChannel, client.channel)
		var got Message
		require.NoError(t, json.Unmarshal(client.message.([]byte), &got))
		assert.Equal(t, "n-1", got.ID)
		assert.Equal(t, uint64(42), got.UserID)
		assert.Equal(t, entity.NotificationTrackApproved, got.Type)
		assert.False(t, got.Read)
	})

	t.Run("Publish error is returned", func(t *testing.T) {
		client := &fakeRedis{err: errors.New("connection refused")}
		err := NewRedisPublisher(client, "events").Dispatch(context.Background(), sample())
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestKafkaPublisher_Dispatch(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewKafkaPublisher(writer)

	require.NoError(t, publisher.Dispatch(context.Background(), sample()))
	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "42", string(writer.msgs[0].Key))
	assert.Equal(t, createdAt, writer.msgs[0].Time)
	assert.JSONEq(t,
		`{"id":"n-1","createdAt":"2024-09-01T12:00:00Z","userId":42,"type":"track_approved","title":"Track approved","message":"Your track is live.","read":false}`,
		string(writer.msgs[0].Value))

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestInboxStore_Dispatch(t *testing.T) {
	mockLogger := mockcore.NewMockLogger(t)
	mockLogger.EXPECT().Debug(mock.Anything, mock.Anything).Maybe()
	mockTime := mockcore.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(createdAt).Maybe()

	uow := memory.NewUnitOfWork(memory.NewStore(mockTime, mockLogger))
	n := sample()
	n.Read = true

	require.NoError(t, NewInboxStore(uow).Dispatch(context.Background(), n))

	stored, err := uow.GetNotificationRepository(context.Background()).ListByUser(context.Background(), 42, true, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "n-1", stored[0].ID)
	assert.True(t, n.Read, "caller's notification must not be modified")
}

func TestMultiDispatcher_Dispatch(t *testing.T) {
	failing := mocknotification.NewMockDispatcher(t)
	failing.EXPECT().Dispatch(mock.Anything, mock.Anything).Return(errors.New("sink down")).Once()
	healthy := mocknotification.NewMockDispatcher(t)
	healthy.EXPECT().Dispatch(mock.Anything, mock.Anything).Return(nil).Once()

	err := NewMultiDispatcher(failing, healthy).Dispatch(context.Background(), sample())
	assert.ErrorContains(t, err, "sink down")
}

func TestLogDispatcher_Dispatch(t *testing.T) {
	mockLogger := mockcore.NewMockLogger(t)
	mockLogger.EXPECT().Info("Notification", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["user_id"] == uint64(42) && fields["request_id"] == "req-1"
	})).Once()

	ctx := context.Background()
	require.NoError(t, NewLogDispatcher(mockLogger).Dispatch(coreport.WithRequestID(ctx, "req-1"), sample()))
}

func TestAsyncDispatcher(t *testing.T) {
	newLogger := func(t *testing.T) *mockcore.MockLogger {
		mockLogger := mockcore.NewMockLogger(t)
		mockLogger.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()
		return mockLogger
	}
	newClock := func(t *testing.T) *mockcore.MockTimeProvider {
		mockTime := mockcore.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(createdAt).Maybe()
		return mockTime
	}

	t.Run("Delivers with generated id and drains on shutdown", func(t *testing.T) {
		writer := &fakeWriter{}
		d := NewAsyncDispatcher(NewKafkaPublisher(writer), AsyncOptions{BufferSize: 10}, newClock(t), newLogger(t))

		for range 5 {
			require.NoError(t, d.Dispatch(context.Background(), &entity.Notification{UserID: 1, Type: "x"}))
		}
		require.NoError(t, d.Shutdown(context.Background()))

		require.Len(t, writer.msgs, 5)
		var got Message
		require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &got))
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, createdAt, got.CreatedAt)

		assert.ErrorIs(t, d.Dispatch(context.Background(), sample()), errs.ErrShuttingDown)
	})

	t.Run("Full buffer drops", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{}, 1)
		blocking := mocknotification.NewMockDispatcher(t)
		blocking.EXPECT().Dispatch(mock.Anything, mock.Anything).RunAndReturn(func(context.Context, *entity.Notification) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			return nil
		}).Maybe()

		d := NewAsyncDispatcher(blocking, AsyncOptions{BufferSize: 1}, newClock(t), newLogger(t))

		require.NoError(t, d.Dispatch(context.Background(), sample()))
		<-started // worker holds the first one
		require.NoError(t, d.Dispatch(context.Background(), sample()))
		assert.ErrorIs(t, d.Dispatch(context.Background(), sample()), ErrBufferFull)

		close(release)
		require.NoError(t, d.Shutdown(context.Background()))
	})

	t.Run("Sink failure is only logged", func(t *testing.T) {
		mockLogger := mockcore.NewMockLogger(t)
		mockLogger.EXPECT().Warn("Failed to deliver notification", mock.Anything).Once()

		writer := &fakeWriter{err: errors.New("broker unavailable")}
		d := NewAsyncDispatcher(NewKafkaPublisher(writer), AsyncOptions{}, newClock(t), mockLogger)

		require.NoError(t, d.Dispatch(context.Background(), sample()))
		require.NoError(t, d.Shutdown(context.Background()))
	})
}
