package serial

import (
	"context"
	"fmt"
	"sync"
	"time"

	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

// DefaultQueueSize is the per-account queue capacity used when none is configured
const DefaultQueueSize = 100

// DefaultIdleTimeout is how long an account worker waits for work before it retires
const DefaultIdleTimeout = time.Minute

type ownerKey struct{}

// Manager runs work for one account at a time, in arrival order.
// Every active account gets its own FIFO queue and worker goroutine;
// a worker left idle for idleTimeout removes its queue and exits.
type Manager struct {
	logger      coreport.Logger
	queueSize   int
	idleTimeout time.Duration

	// Account-based queues for strict ordering
	queues    sync.Map // map[uint64]chan *job
	workers   sync.WaitGroup
	closeLock sync.RWMutex
	closed    bool
}

// job is a queued unit of work
type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// NewManager creates a manager with the given per-account queue capacity
func NewManager(logger coreport.Logger, queueSize int) *Manager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Manager{
		logger:      logger,
		queueSize:   queueSize,
		idleTimeout: DefaultIdleTimeout,
	}
}

// Do runs fn on the queue of userID and waits for it.
// Calls made from inside fn for the same account run inline.
func (m *Manager) Do(ctx context.Context, userID uint64, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(ownerKey{}).(uint64); ok && owner == userID {
		return fn(ctx)
	}

	j := &job{
		ctx:  context.WithValue(ctx, ownerKey{}, userID),
		fn:   fn,
		done: make(chan error, 1),
	}
	if err := m.enqueue(ctx, userID, j); err != nil {
		return err
	}

	// Once queued the job always answers: the worker skips it if ctx is done by then
	return <-j.done
}

// Run is Do for functions that produce a value
func Run[T any](ctx context.Context, m *Manager, userID uint64, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := m.Do(ctx, userID, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

func (m *Manager) enqueue(ctx context.Context, userID uint64, j *job) error {
	m.closeLock.RLock()
	defer m.closeLock.RUnlock()

	if m.closed {
		return errs.ErrShuttingDown
	}

	queueIface, loaded := m.queues.LoadOrStore(userID, make(chan *job, m.queueSize))
	queue, ok := queueIface.(chan *job)
	if !ok {
		m.logger.Error("Failed to type assert queue channel", map[string]any{"user_id": userID})
		return errs.ErrInternalServer
	}

	if !loaded {
		m.logger.Debug("Starting account queue worker", map[string]any{"user_id": userID})
		m.workers.Add(1)
		go m.work(userID, queue)
	}

	select {
	case queue <- j:
		return nil
	case <-ctx.Done():
		m.logger.Warn("Context canceled while enqueueing", map[string]any{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return ctx.Err()
	}
}

// work drains the queue of one account
func (m *Manager) work(userID uint64, queue chan *job) {
	defer m.workers.Done()

	idle := time.NewTimer(m.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case j, ok := <-queue:
			if !ok {
				m.logger.Debug("Account queue worker stopped", map[string]any{"user_id": userID})
				return
			}
			if err := j.ctx.Err(); err != nil {
				j.done <- err
			} else {
				j.done <- m.execute(userID, j)
			}
			idle.Reset(m.idleTimeout)
		case <-idle.C:
			if m.retire(userID, queue) {
				m.logger.Debug("Idle account queue worker retired", map[string]any{"user_id": userID})
				return
			}
			idle.Reset(m.idleTimeout)
		}
	}
}

// retire unregisters an empty queue. Enqueuers hold the read lock from lookup to send,
// so with the write lock held no job can be on its way into queue.
func (m *Manager) retire(userID uint64, queue chan *job) bool {
	// An enqueuer blocked on a full queue keeps the read lock; try again next tick
	if !m.closeLock.TryLock() {
		return false
	}
	defer m.closeLock.Unlock()

	if m.closed || len(queue) > 0 {
		return false
	}
	return m.queues.CompareAndDelete(userID, queue)
}

func (m *Manager) execute(userID uint64, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Recovered panic in account queue", map[string]any{
				"user_id": userID,
				"panic":   fmt.Sprint(r),
			})
			err = errs.ErrInternalServer
		}
	}()
	return j.fn(j.ctx)
}

// Shutdown refuses new work, lets queued work finish and stops all workers
func (m *Manager) Shutdown() {
	m.logger.Info("Shutting down account queues", nil)

	m.closeLock.Lock()
	if m.closed {
		m.closeLock.Unlock()
		return
	}
	m.closed = true
	m.queues.Range(func(_, queueIface any) bool {
		if queue, ok := queueIface.(chan *job); ok {
			close(queue)
		}
		return true
	})
	m.closeLock.Unlock()

	m.workers.Wait()
	m.logger.Info("Account queues shut down", nil)
}
