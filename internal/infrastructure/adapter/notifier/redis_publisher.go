package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured
const DefaultRedisChannel = "promo_notifications"

// RedisOptions configures the redis sink
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes notifications as JSON on a redis pub/sub channel
type RedisPublisher struct {
	client  redisPublisher
	channel string
}

var _ notification.Dispatcher = (*RedisPublisher)(nil)

// NewRedisClient opens a redis client for opts
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewRedisPublisher creates a redis sink publishing on channel
func NewRedisPublisher(client redisPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Dispatch publishes n
func (p *RedisPublisher) Dispatch(ctx context.Context, n *entity.Notification) error {
	payload, err := encode(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
