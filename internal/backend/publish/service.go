package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"adflow/internal/common"
	"adflow/internal/core/ports"
	"adflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrInvalidRequest = errors.New("invalid publish request")
	ErrRejected       = errors.New("publish rejected")
)

// Service dispatches publish requests to the platform registry and records
// every attempt, accepted or rejected, in the ledger.
type Service struct {
	registry PlatformRegistry
	repo     ports.PublishRepository
	logger   *slog.Logger
}

func NewService(registry PlatformRegistry, repo ports.PublishRepository) *Service {
	return &Service{
		registry: registry,
		repo:     repo,
		logger:   common.Logger().With("component", "publisher"),
	}
}

func (s *Service) Publish(ctx context.Context, req domain.PublishRequest) (domain.PublishConfirmation, error) {
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" {
		return domain.PublishConfirmation{}, fmt.Errorf("%w: accountId is required", ErrInvalidRequest)
	}
	handler, ok := s.registry[req.Platform]
	if !ok {
		return domain.PublishConfirmation{}, fmt.Errorf("%w: unsupported platform %q", ErrInvalidRequest, req.Platform)
	}

	record := domain.NewPublishRecord(req)
	fields, handlerErr := handler(ctx, req)
	if handlerErr != nil {
		record.Status = domain.PublishRejected
		fields = map[string]any{"error": handlerErr.Error()}
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	fields["id"] = record.ID.String()

	payload, err := json.Marshal(fields)
	if err != nil {
		return domain.PublishConfirmation{}, fmt.Errorf("encode confirmation: %w", err)
	}
	record.Confirmation = datatypes.JSON(payload)

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to record publish attempt", "platform", req.Platform, "error", err)
		return domain.PublishConfirmation{}, fmt.Errorf("record publish attempt: %w", err)
	}

	if handlerErr != nil {
		s.logger.Warn("publish rejected", "id", record.ID, "platform", req.Platform, "account", req.AccountID, "error", handlerErr)
		return domain.PublishConfirmation{}, fmt.Errorf("%w: %v", ErrRejected, handlerErr)
	}

	s.logger.Info("publish accepted", "id", record.ID, "platform", req.Platform, "account", req.AccountID)
	conf := domain.PublishConfirmation{
		ID:       record.ID.String(),
		Platform: req.Platform,
		Raw:      fields,
	}
	conf.Status, _ = fields["status"].(string)
	conf.Message, _ = fields["message"].(string)
	return conf, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.PublishRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, platform domain.Platform, accountID string, limit int) ([]domain.PublishRecord, error) {
	return s.repo.ListByAccount(ctx, platform, accountID, limit)
}
