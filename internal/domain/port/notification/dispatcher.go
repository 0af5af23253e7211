package notification

import (
	"context"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// Dispatcher delivers notifications to users. Delivery is best effort:
// callers never roll back or fail a financial operation because of it.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification *entity.Notification) error
}
