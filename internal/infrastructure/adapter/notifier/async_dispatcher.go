package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
)

// ErrBufferFull is returned when a notification is dropped because the buffer is full
var ErrBufferFull = errors.New("notification buffer full")

// Defaults for AsyncOptions
const (
	DefaultBufferSize      = 1024
	DefaultDispatchTimeout = 5 * time.Second
)

// AsyncOptions configures AsyncDispatcher
type AsyncOptions struct {
	BufferSize      int
	DispatchTimeout time.Duration
}

type envelope struct {
	ctx          context.Context
	notification *entity.Notification
}

// AsyncDispatcher queues notifications in a bounded buffer and delivers them to the
// next dispatcher from one background worker. Dispatch never blocks.
type AsyncDispatcher struct {
	next         notification.Dispatcher
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	timeout      time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan envelope
	done   chan struct{}
}

var _ notification.Dispatcher = (*AsyncDispatcher)(nil)

// NewAsyncDispatcher starts the delivery worker
func NewAsyncDispatcher(next notification.Dispatcher, opts AsyncOptions, timeProvider coreport.TimeProvider, logger coreport.Logger) *AsyncDispatcher {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = DefaultDispatchTimeout
	}

	d := &AsyncDispatcher{
		next:         next,
		timeProvider: timeProvider,
		logger:       logger,
		timeout:      opts.DispatchTimeout,
		queue:        make(chan envelope, opts.BufferSize),
		done:         make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch assigns an id and timestamp when missing and enqueues n.
// A full buffer drops the notification.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, n *entity.Notification) error {
	queued := *n
	if queued.ID == "" {
		queued.ID = uuid.NewString()
	}
	if queued.CreatedAt.IsZero() {
		queued.CreatedAt = d.timeProvider.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return errs.ErrShuttingDown
	}

	select {
	case d.queue <- envelope{ctx: context.WithoutCancel(ctx), notification: &queued}:
		return nil
	default:
		d.logger.Warn("Notification buffer full, dropping notification", map[string]any{
			"user_id": queued.UserID,
			"type":    queued.Type,
		})
		return ErrBufferFull
	}
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for env := range d.queue {
		d.deliver(env)
	}
}

func (d *AsyncDispatcher) deliver(env envelope) {
	ctx, cancel := context.WithTimeout(env.ctx, d.timeout)
	defer cancel()

	if err := d.next.Dispatch(ctx, env.notification); err != nil {
		d.logger.Warn("Failed to deliver notification", map[string]any{
			"notification_id": env.notification.ID,
			"user_id":         env.notification.UserID,
			"type":            env.notification.Type,
			"error":           err.Error(),
		})
	}
}

// Shutdown stops accepting notifications and waits until the buffer is drained
// or ctx is done
func (d *AsyncDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn("Notification buffer not drained before shutdown deadline", map[string]any{
			"pending": len(d.queue),
		})
		return ctx.Err()
	}
}
