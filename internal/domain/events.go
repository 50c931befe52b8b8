package domain

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is emitted by every orchestrator command and published on the
// notification bus for presentation layers.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Stage       Stage     `json:"stage"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`

	// ClosePublishDialog tells the presentation layer the publish intent is done.
	ClosePublishDialog bool `json:"close_publish_dialog,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func NewNotification(sessionID uuid.UUID, stage Stage, severity Severity, title, description string) Notification {
	return Notification{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Stage:       stage,
		Severity:    severity,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
