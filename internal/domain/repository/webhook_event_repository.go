package repository

import (
	"context"

	"github.com/designmart/payment-service/internal/domain/model"
)

// WebhookEventRepository audits verified inbound webhook deliveries
type WebhookEventRepository interface {
	SaveEvent(ctx context.Context, event *model.WebhookEvent) error
	GetEvent(ctx context.Context, providerEventID string) (*model.WebhookEvent, error)
	MarkProcessed(ctx context.Context, providerEventID string) error
	MarkFailed(ctx context.Context, providerEventID string, cause error) error
}
