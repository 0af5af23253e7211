package notifier

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
)

// LogDispatcher writes notifications to the application log
type LogDispatcher struct {
	logger coreport.Logger
}

var _ notification.Dispatcher = (*LogDispatcher)(nil)

// NewLogDispatcher creates a dispatcher that only logs
func NewLogDispatcher(logger coreport.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs n at info level
func (d *LogDispatcher) Dispatch(ctx context.Context, n *entity.Notification) error {
	fields := map[string]any{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"type":            n.Type,
		"title":           n.Title,
	}
	if id := coreport.RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	d.logger.Info("Notification", fields)
	return nil
}
