package entity

import "time"

// Notification types emitted by the ledger core
const (
	NotificationTrackApproved = "track_approved"
	NotificationTrackRejected = "track_rejected"
)

// WithdrawalNotificationType returns the event type for a withdrawal status change
func WithdrawalNotificationType(status WithdrawalStatus) string {
	return "withdrawal_" + string(status)
}

// Notification is a message for a user
type Notification struct {
	ID        string
	UserID    uint64
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// NotificationPayload is the wire form handed to dispatch sinks
type NotificationPayload struct {
	UserID  uint64 `json:"userId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

// Payload returns the wire form of n
func (n *Notification) Payload() NotificationPayload {
	return NotificationPayload{
		UserID:  n.UserID,
		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,
		Read:    n.Read,
	}
}
