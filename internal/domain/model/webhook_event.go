package model

import (
	"database/sql/driver"
	"time"
)

// WebhookEventStatus represents the processing status of an inbound webhook
type WebhookEventStatus string

const (
	WebhookEventPending   WebhookEventStatus = "pending"
	WebhookEventCompleted WebhookEventStatus = "completed"
	WebhookEventFailed    WebhookEventStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookEventStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookEventStatus(v)
	case []byte:
		*w = WebhookEventStatus(v)
	default:
		*w = WebhookEventPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookEventStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// WebhookEvent is the audit record of one verified inbound provider webhook.
// Reconciliation is driven by the payment row, not by this table; duplicate
// deliveries collide on the provider event id and are inserted at most once.
type WebhookEvent struct {
	ID              int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	GatewayCode     string             `gorm:"size:50;not null;index" json:"gateway_code"`
	ProviderEventID string             `gorm:"unique;not null;size:255" json:"provider_event_id"`
	EventType       string             `gorm:"not null;size:100;index" json:"event_type"`
	Status          WebhookEventStatus `gorm:"size:20;default:'pending';index" json:"status"`
	ProcessedAt     *time.Time         `json:"processed_at,omitempty"`
	Payload         JSONB              `gorm:"type:jsonb;not null" json:"payload"`
	LastError       *string            `json:"last_error,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
