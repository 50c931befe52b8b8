package ports

import (
	"context"

	"adflow/internal/domain"

	"github.com/google/uuid"
)

// ProductFetcher calls the scrape endpoint.
type ProductFetcher interface {
	FetchProduct(ctx context.Context, url string) (domain.Product, error)
}

// AdTextGenerator calls the text generation endpoint.
type AdTextGenerator interface {
	GenerateAdText(ctx context.Context, req domain.AdTextRequest) (string, error)
}

// AdImageGenerator calls the image generation endpoint.
type AdImageGenerator interface {
	GenerateAdImage(ctx context.Context, req domain.AdImageRequest) (domain.AdImage, error)
}

// AdPublisher calls the publish endpoint.
type AdPublisher interface {
	PublishAd(ctx context.Context, req domain.PublishRequest) (domain.PublishConfirmation, error)
}

// Notifier receives every notification an orchestrator emits
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// EventBus represents the notification pub/sub operations
type EventBus interface {
	// Broadcast a notification to every subscriber of its session
	PublishNotification(ctx context.Context, n domain.Notification) error

	// Subscribe to one session's notifications until ctx is done
	SubscribeToNotifications(ctx context.Context, sessionID uuid.UUID) (<-chan domain.Notification, error)
}

// NotificationLog keeps a bounded history per session for late readers
type NotificationLog interface {
	Append(ctx context.Context, n domain.Notification) error

	// Recent returns up to limit notifications, oldest first
	Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Notification, error)

	// Drop forgets a discarded session's history
	Drop(ctx context.Context, sessionID uuid.UUID) error
}

// PublishRepository represents the backend's publish ledger operations
type PublishRepository interface {
	Create(ctx context.Context, record *domain.PublishRecord) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.PublishRecord, error)

	// Most recent first
	ListByAccount(ctx context.Context, platform domain.Platform, accountID string, limit int) ([]domain.PublishRecord, error)
}
