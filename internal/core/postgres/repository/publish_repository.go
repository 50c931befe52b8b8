package repository

import (
	"context"
	"errors"

	"adflow/internal/core/ports"
	"adflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type publishRepository struct {
	db *gorm.DB
}

// NewPublishRepository creates a new instance of PublishRepository
func NewPublishRepository(db *gorm.DB) ports.PublishRepository {
	return &publishRepository{db: db}
}

// Migrate creates or updates the ledger table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.PublishRecord{})
}

func (r *publishRepository) Create(ctx context.Context, record *domain.PublishRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *publishRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PublishRecord, error) {
	var record domain.PublishRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPublishRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *publishRepository) ListByAccount(ctx context.Context, platform domain.Platform, accountID string, limit int) ([]domain.PublishRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []domain.PublishRecord
	err := r.db.WithContext(ctx).
		Where("platform = ? AND account_id = ?", platform, accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
