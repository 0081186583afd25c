package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/designmart/payment-service/internal/domain/model"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *webhookEventRepository) conn(ctx context.Context) *gorm.DB {
	return ExtractTx(ctx, r.db).WithContext(ctx)
}

// SaveEvent records a verified inbound webhook. Duplicate deliveries collide
// on the provider event id and are dropped silently.
func (r *webhookEventRepository) SaveEvent(ctx context.Context, event *model.WebhookEvent) error {
	err := r.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error

	if err != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("provider_event_id", event.ProviderEventID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return fmt.Errorf("failed to save webhook event: %w", err)
	}

	return nil
}

func (r *webhookEventRepository) GetEvent(ctx context.Context, providerEventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.conn(ctx).
		Where("provider_event_id = ?", providerEventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("provider_event_id", providerEventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, providerEventID string) error {
	now := time.Now()

	result := r.conn(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", providerEventID).
		Updates(map[string]interface{}{
			"status":       model.WebhookEventCompleted,
			"processed_at": &now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event as processed",
			zap.String("provider_event_id", providerEventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as processed: %w", result.Error)
	}

	return nil
}

func (r *webhookEventRepository) MarkFailed(ctx context.Context, providerEventID string, cause error) error {
	errorMsg := cause.Error()

	result := r.conn(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", providerEventID).
		Updates(map[string]interface{}{
			"status":     model.WebhookEventFailed,
			"last_error": &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event as failed",
			zap.String("provider_event_id", providerEventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as failed: %w", result.Error)
	}

	return nil
}
