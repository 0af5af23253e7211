package withdrawal

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

var titles = map[entity.WithdrawalStatus]string{
	entity.WithdrawalPending:    "Withdrawal requested",
	entity.WithdrawalApproved:   "Withdrawal approved",
	entity.WithdrawalProcessing: "Withdrawal in progress",
	entity.WithdrawalCompleted:  "Withdrawal completed",
	entity.WithdrawalRejected:   "Withdrawal rejected",
	entity.WithdrawalCancelled:  "Withdrawal cancelled",
}

func message(w *entity.WithdrawalRequest) string {
	switch w.Status {
	case entity.WithdrawalPending:
		return fmt.Sprintf("Your withdrawal of %s via %s is awaiting review.", w.Amount, w.PaymentMethod)
	case entity.WithdrawalCompleted:
		return fmt.Sprintf("Your withdrawal of %s has been paid out.", w.Amount)
	case entity.WithdrawalRejected:
		return fmt.Sprintf("Your withdrawal of %s was rejected: %s", w.Amount, w.RejectionReason)
	default:
		return fmt.Sprintf("Your withdrawal of %s is now %s.", w.Amount, w.Status)
	}
}

// notify hands the status change to the dispatcher; failures are only logged
func (p *Processor) notify(ctx context.Context, w *entity.WithdrawalRequest) {
	n := &entity.Notification{
		UserID:    w.UserID,
		Type:      entity.WithdrawalNotificationType(w.Status),
		Title:     titles[w.Status],
		Message:   message(w),
		CreatedAt: p.timeProvider.Now(),
	}
	if err := p.dispatcher.Dispatch(context.WithoutCancel(ctx), n); err != nil {
		p.logger.Warn("Failed to dispatch withdrawal notification", map[string]any{
			"withdrawal_id": w.ID,
			"user_id":       w.UserID,
			"type":          n.Type,
			"error":         err.Error(),
		})
	}
}
