package memory

import (
	"context"
	"sync"

	"adflow/internal/domain"

	"github.com/google/uuid"
)

const subscriberBuffer = 32

// EventBus fans notifications out to in-process subscribers. It stands in for
// the Redis bus when no REDIS_ADDR is configured.
type EventBus struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan domain.Notification]struct{}
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[uuid.UUID]map[chan domain.Notification]struct{})}
}

// PublishNotification never blocks: a subscriber whose buffer is full misses the event.
func (b *EventBus) PublishNotification(_ context.Context, n domain.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[n.SessionID] {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

// SubscribeToNotifications returns a channel closed once ctx is done.
func (b *EventBus) SubscribeToNotifications(ctx context.Context, sessionID uuid.UUID) (<-chan domain.Notification, error) {
	ch := make(chan domain.Notification, subscriberBuffer)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan domain.Notification]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[sessionID], ch)
		if len(b.subs[sessionID]) == 0 {
			delete(b.subs, sessionID)
		}
		close(ch)
	}()

	return ch, nil
}

// NotificationLog keeps the last limit notifications per session.
type NotificationLog struct {
	mu      sync.RWMutex
	limit   int
	history map[uuid.UUID][]domain.Notification
}

func NewNotificationLog(limit int) *NotificationLog {
	if limit <= 0 {
		limit = 50
	}
	return &NotificationLog{limit: limit, history: make(map[uuid.UUID][]domain.Notification)}
}

func (l *NotificationLog) Append(_ context.Context, n domain.Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := append(l.history[n.SessionID], n)
	if len(h) > l.limit {
		h = h[len(h)-l.limit:]
	}
	l.history[n.SessionID] = h
	return nil
}

func (l *NotificationLog) Recent(_ context.Context, sessionID uuid.UUID, limit int) ([]domain.Notification, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h := l.history[sessionID]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]domain.Notification, len(h))
	copy(out, h)
	return out, nil
}

func (l *NotificationLog) Drop(_ context.Context, sessionID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, sessionID)
	return nil
}
