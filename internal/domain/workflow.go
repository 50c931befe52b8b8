package domain

import (
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseIdle            Phase = "IDLE"
	PhaseFetching        Phase = "FETCHING"
	PhaseReady           Phase = "READY"
	PhaseGeneratingText  Phase = "GENERATING_TEXT"
	PhaseGeneratingImage Phase = "GENERATING_IMAGE"
	PhasePublishing      Phase = "PUBLISHING"
)

// IsBusy reports whether the phase has a collaborator call in flight.
func (p Phase) IsBusy() bool {
	switch p {
	case PhaseFetching, PhaseGeneratingText, PhaseGeneratingImage, PhasePublishing:
		return true
	}
	return false
}

// Stage names the collaborator a command talks to.
type Stage string

const (
	StageFetch         Stage = "fetch"
	StageGenerateText  Stage = "generate-text"
	StageGenerateImage Stage = "generate-image"
	StagePublish       Stage = "publish"
)

type ErrorKind string

const (
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindNoResult  ErrorKind = "no-result"
)

// StageError is the last collaborator failure recorded on the workflow.
type StageError struct {
	Stage   Stage     `json:"stage"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

type AdImage struct {
	URL string `json:"url"`
}

// WorkflowState is the single source of truth for one ad-creation session.
type WorkflowState struct {
	SessionID  uuid.UUID   `json:"session_id"`
	ProductURL string      `json:"product_url,omitempty"`
	Product    *Product    `json:"product,omitempty"`
	AdText     *string     `json:"ad_text,omitempty"`
	AdImage    *AdImage    `json:"ad_image,omitempty"`
	Phase      Phase       `json:"phase"`
	LastError  *StageError `json:"last_error,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// --- FACTORY ---
func NewWorkflowState(sessionID uuid.UUID) *WorkflowState {
	return &WorkflowState{
		SessionID: sessionID,
		Phase:     PhaseIdle,
		UpdatedAt: time.Now(),
	}
}

// --- METHODS ---

// Clone returns a deep copy so readers never share pointers with the owner.
func (s *WorkflowState) Clone() WorkflowState {
	out := *s
	if s.Product != nil {
		p := *s.Product
		out.Product = &p
	}
	if s.AdText != nil {
		t := *s.AdText
		out.AdText = &t
	}
	if s.AdImage != nil {
		img := *s.AdImage
		out.AdImage = &img
	}
	if s.LastError != nil {
		e := *s.LastError
		out.LastError = &e
	}
	return out
}

// StablePhase is where a failed command falls back to.
func (s *WorkflowState) StablePhase() Phase {
	if s.Product == nil {
		return PhaseIdle
	}
	return PhaseReady
}
