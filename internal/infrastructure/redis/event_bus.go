package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"adflow/internal/common"
	"adflow/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const notificationChannelPrefix = "adflow:notifications:"

// RedisEventBus publishes notifications on one pub/sub channel per session,
// so several API replicas can stream the same session.
type RedisEventBus struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{
		client: client,
		logger: common.Logger().With("component", "redis-event-bus"),
	}
}

func notificationChannel(sessionID uuid.UUID) string {
	return notificationChannelPrefix + sessionID.String()
}

// PublishNotification broadcasts the notification to the session's channel
func (b *RedisEventBus) PublishNotification(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, notificationChannel(n.SessionID), payload).Err()
}

// SubscribeToNotifications opens a continuous stream for one session
func (b *RedisEventBus) SubscribeToNotifications(ctx context.Context, sessionID uuid.UUID) (<-chan domain.Notification, error) {
	pubsub := b.client.Subscribe(ctx, notificationChannel(sessionID))

	// Wait for the subscription to be confirmed before handing out the channel
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	msgChan := make(chan domain.Notification)

	// Forward Redis messages to our Go channel until ctx is done
	go func() {
		defer close(msgChan)
		defer pubsub.Close()

		redisChan := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisChan:
				if !ok {
					return
				}
				var n domain.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					b.logger.Warn("dropping malformed notification", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case msgChan <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return msgChan, nil
}
