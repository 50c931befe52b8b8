package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"adflow/internal/common"
	"adflow/internal/core/ports"
	"adflow/internal/domain"
	"adflow/internal/metrics"
	"adflow/internal/orchestrator"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// PublishCommand carries the operator's publish intent.
type PublishCommand struct {
	Platform     domain.Platform
	AccountID    string
	IncludeText  bool
	IncludeImage bool
}

type WorkflowService interface {
	CreateSession(ctx context.Context) (domain.WorkflowState, error)
	GetSession(ctx context.Context, id uuid.UUID) (domain.WorkflowState, error)
	DiscardSession(ctx context.Context, id uuid.UUID) error

	FetchProduct(ctx context.Context, id uuid.UUID, url string) (domain.WorkflowState, error)
	GenerateAdText(ctx context.Context, id uuid.UUID) (domain.WorkflowState, error)
	GenerateAdImage(ctx context.Context, id uuid.UUID) (domain.WorkflowState, error)
	RequestPublish(ctx context.Context, id uuid.UUID, cmd PublishCommand) (domain.WorkflowState, error)

	Notifications(ctx context.Context, id uuid.UUID, limit int) ([]domain.Notification, error)
	Subscribe(ctx context.Context, id uuid.UUID) (<-chan domain.Notification, error)
}

// The Implementation
type workflowService struct {
	collaborators orchestrator.Collaborators
	bus           ports.EventBus
	history       ports.NotificationLog
	metrics       *metrics.Stages
	logger        *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*orchestrator.Orchestrator
}

// Constructor
func NewWorkflowService(c orchestrator.Collaborators, bus ports.EventBus, history ports.NotificationLog, m *metrics.Stages) WorkflowService {
	return &workflowService{
		collaborators: c,
		bus:           bus,
		history:       history,
		metrics:       m,
		logger:        common.Logger().With("component", "workflow-service"),
		sessions:      make(map[uuid.UUID]*orchestrator.Orchestrator),
	}
}

func (s *workflowService) CreateSession(ctx context.Context) (domain.WorkflowState, error) {
	id := uuid.New()
	orch, err := orchestrator.New(id, s.collaborators, &notifier{bus: s.bus, history: s.history},
		orchestrator.WithMetrics(s.metrics))
	if err != nil {
		return domain.WorkflowState{}, err
	}

	s.mu.Lock()
	s.sessions[id] = orch
	s.mu.Unlock()

	s.logger.Info("session created", "session", id)
	return orch.Snapshot(), nil
}

func (s *workflowService) GetSession(ctx context.Context, id uuid.UUID) (domain.WorkflowState, error) {
	orch, err := s.lookup(id)
	if err != nil {
		return domain.WorkflowState{}, err
	}
	return orch.Snapshot(), nil
}

// DiscardSession drops the workflow state; an in-flight command still finishes
// against the detached orchestrator.
func (s *workflowService) DiscardSession(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if err := s.history.Drop(ctx, id); err != nil {
		s.logger.Warn("failed to drop notification history", "session", id, "error", err)
	}
	s.logger.Info("session discarded", "session", id)
	return nil
}

func (s *workflowService) FetchProduct(ctx context.Context, id uuid.UUID, url string) (domain.WorkflowState, error) {
	return s.run(id, func(o *orchestrator.Orchestrator) error { return o.FetchProduct(ctx, url) })
}

func (s *workflowService) GenerateAdText(ctx context.Context, id uuid.UUID) (domain.WorkflowState, error) {
	return s.run(id, func(o *orchestrator.Orchestrator) error { return o.GenerateAdText(ctx) })
}

func (s *workflowService) GenerateAdImage(ctx context.Context, id uuid.UUID) (domain.WorkflowState, error) {
	return s.run(id, func(o *orchestrator.Orchestrator) error { return o.GenerateAdImage(ctx) })
}

func (s *workflowService) RequestPublish(ctx context.Context, id uuid.UUID, cmd PublishCommand) (domain.WorkflowState, error) {
	return s.run(id, func(o *orchestrator.Orchestrator) error {
		return o.RequestPublish(ctx, cmd.Platform, cmd.AccountID, cmd.IncludeText, cmd.IncludeImage)
	})
}

func (s *workflowService) Notifications(ctx context.Context, id uuid.UUID, limit int) ([]domain.Notification, error) {
	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	return s.history.Recent(ctx, id, limit)
}

func (s *workflowService) Subscribe(ctx context.Context, id uuid.UUID) (<-chan domain.Notification, error) {
	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	return s.bus.SubscribeToNotifications(ctx, id)
}

// run executes one command and returns the state it left behind, even on error.
func (s *workflowService) run(id uuid.UUID, command func(*orchestrator.Orchestrator) error) (domain.WorkflowState, error) {
	orch, err := s.lookup(id)
	if err != nil {
		return domain.WorkflowState{}, err
	}
	cmdErr := command(orch)
	return orch.Snapshot(), cmdErr
}

func (s *workflowService) lookup(id uuid.UUID) (*orchestrator.Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orch, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return orch, nil
}

// notifier records a notification in the session history, then broadcasts it.
type notifier struct {
	bus     ports.EventBus
	history ports.NotificationLog
}

func (n *notifier) Notify(ctx context.Context, note domain.Notification) error {
	return errors.Join(
		n.history.Append(ctx, note),
		n.bus.PublishNotification(ctx, note),
	)
}
