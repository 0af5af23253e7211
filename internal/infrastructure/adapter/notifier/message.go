package notifier

import (
	"encoding/json"
	"time"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
)

// Message is the JSON document published to external sinks
type Message struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	entity.NotificationPayload
}

func encode(n *entity.Notification) ([]byte, error) {
	return json.Marshal(Message{
		ID:                  n.ID,
		CreatedAt:           n.CreatedAt.UTC(),
		NotificationPayload: n.Payload(),
	})
}
