// Package memory is a process-local storage driver with the same ports as the postgres one.
// A read-write unit of work holds the store lock until it ends, so units never interleave.
package memory

import (
	"errors"
	"sync"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
)

var (
	errReadOnly  = errors.New("write attempted in a read-only unit of work")
	errUnitEnded = errors.New("unit of work already ended")
)

// Store keeps all records in maps guarded by one lock
type Store struct {
	mu           sync.RWMutex
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	nextSeq       uint64
	ledger        map[string]*entity.BalanceTransaction
	accounts      map[uint64]*entity.Account
	withdrawals   map[string]*entity.WithdrawalRequest
	content       map[string]*entity.ContentItem
	notifications map[string]*entity.Notification
}

// NewStore creates an empty store
func NewStore(timeProvider coreport.TimeProvider, logger coreport.Logger) *Store {
	return &Store{
		timeProvider:  timeProvider,
		logger:        logger,
		ledger:        make(map[string]*entity.BalanceTransaction),
		accounts:      make(map[uint64]*entity.Account),
		withdrawals:   make(map[string]*entity.WithdrawalRequest),
		content:       make(map[string]*entity.ContentItem),
		notifications: make(map[string]*entity.Notification),
	}
}

// table reads through an overlay of uncommitted writes. A nil overlay writes through.
type table[K comparable, V any] struct {
	base    map[K]V
	overlay map[K]V
}

func (t table[K, V]) get(k K) (V, bool) {
	if t.overlay != nil {
		if v, ok := t.overlay[k]; ok {
			return v, true
		}
	}
	v, ok := t.base[k]
	return v, ok
}

func (t table[K, V]) put(k K, v V) {
	if t.overlay != nil {
		t.overlay[k] = v
		return
	}
	t.base[k] = v
}

func (t table[K, V]) each(fn func(V)) {
	for _, v := range t.overlay {
		fn(v)
	}
	for k, v := range t.base {
		if t.overlay != nil {
			if _, shadowed := t.overlay[k]; shadowed {
				continue
			}
		}
		fn(v)
	}
}

func (t table[K, V]) commit() {
	for k, v := range t.overlay {
		t.base[k] = v
	}
}

// view is what a repository sees: either a unit of work or a single autocommit call
type view struct {
	store    *Store
	readOnly bool

	ledger        table[string, *entity.BalanceTransaction]
	accounts      table[uint64, *entity.Account]
	withdrawals   table[string, *entity.WithdrawalRequest]
	content       table[string, *entity.ContentItem]
	notifications table[string, *entity.Notification]
}

func (s *Store) newView(buffered, readOnly bool) *view {
	v := &view{
		store:         s,
		readOnly:      readOnly,
		ledger:        table[string, *entity.BalanceTransaction]{base: s.ledger},
		accounts:      table[uint64, *entity.Account]{base: s.accounts},
		withdrawals:   table[string, *entity.WithdrawalRequest]{base: s.withdrawals},
		content:       table[string, *entity.ContentItem]{base: s.content},
		notifications: table[string, *entity.Notification]{base: s.notifications},
	}
	if buffered {
		v.ledger.overlay = make(map[string]*entity.BalanceTransaction)
		v.accounts.overlay = make(map[uint64]*entity.Account)
		v.withdrawals.overlay = make(map[string]*entity.WithdrawalRequest)
		v.content.overlay = make(map[string]*entity.ContentItem)
		v.notifications.overlay = make(map[string]*entity.Notification)
	}
	return v
}

func (v *view) commit() {
	v.ledger.commit()
	v.accounts.commit()
	v.withdrawals.commit()
	v.content.commit()
	v.notifications.commit()
}

// access runs fn against the unit of work in tx, or against the store under its lock
func (s *Store) access(tx *unit, write bool, fn func(v *view) error) error {
	if tx != nil {
		if tx.done {
			return errUnitEnded
		}
		if write && tx.view.readOnly {
			return errReadOnly
		}
		return fn(tx.view)
	}
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.newView(false, !write))
}
