package dto

import (
	"adflow/internal/domain"
)

type FetchProductRequest struct {
	URL string `json:"url"`
}

type PublishRequest struct {
	Platform     domain.Platform `json:"platform"`
	AccountID    string          `json:"account_id"`
	IncludeText  bool            `json:"include_text"`
	IncludeImage bool            `json:"include_image"`
}

// WorkflowResponse is returned by every command, successful or not.
type WorkflowResponse struct {
	State domain.WorkflowState `json:"state"`
	Error string               `json:"error,omitempty"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

type PreviewResponse struct {
	HTML string `json:"html"`
}
