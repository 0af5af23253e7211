package notifier

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
)

// MultiDispatcher hands every notification to each sink in order.
// A failing sink does not stop the others.
type MultiDispatcher struct {
	sinks []notification.Dispatcher
}

var _ notification.Dispatcher = (*MultiDispatcher)(nil)

// NewMultiDispatcher creates a fan-out over sinks
func NewMultiDispatcher(sinks ...notification.Dispatcher) *MultiDispatcher {
	return &MultiDispatcher{sinks: sinks}
}

// Dispatch delivers n to every sink and joins their errors
func (m *MultiDispatcher) Dispatch(ctx context.Context, n *entity.Notification) error {
	var errList []error
	for _, sink := range m.sinks {
		if err := sink.Dispatch(ctx, n); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
