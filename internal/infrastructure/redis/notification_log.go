package redis

import (
	"context"
	"encoding/json"
	"time"

	"adflow/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const historyKeyPrefix = "adflow:history:"

// RedisNotificationLog keeps a capped list of notifications per session.
type RedisNotificationLog struct {
	client *redis.Client
	limit  int64
	ttl    time.Duration
}

func NewRedisNotificationLog(client *redis.Client, limit int, ttl time.Duration) *RedisNotificationLog {
	if limit <= 0 {
		limit = 50
	}
	return &RedisNotificationLog{client: client, limit: int64(limit), ttl: ttl}
}

func historyKey(sessionID uuid.UUID) string {
	return historyKeyPrefix + sessionID.String()
}

// Append adds a notification to the end of the list and trims the front
func (l *RedisNotificationLog) Append(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := historyKey(n.SessionID)

	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -l.limit, -1)
	if l.ttl > 0 {
		pipe.Expire(ctx, key, l.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns the newest notifications, oldest first
func (l *RedisNotificationLog) Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Notification, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := l.client.LRange(ctx, historyKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (l *RedisNotificationLog) Drop(ctx context.Context, sessionID uuid.UUID) error {
	return l.client.Del(ctx, historyKey(sessionID)).Err()
}
