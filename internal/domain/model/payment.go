package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the normalized status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsTerminal reports whether the status is final. Terminal payments keep their
// amount and currency forever.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// CanTransitionTo reports whether the state machine allows moving to target.
// Legal transitions: pending -> completed/failed, completed -> refunded.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusCompleted || target == PaymentStatusFailed
	case PaymentStatusCompleted:
		return target == PaymentStatusRefunded
	default:
		return false
	}
}

// Payment represents one attempted money movement through a gateway.
// Created before any external call is made and mutated only by the orchestrator.
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	GatewayID       int64           `gorm:"not null;index" json:"gateway_id"`
	PurchaseID      *int64          `gorm:"index" json:"purchase_id,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	PaymentMethod   string          `gorm:"size:50;not null" json:"payment_method"`
	TransactionID   *string         `gorm:"column:transaction_id;unique;size:191" json:"transaction_id,omitempty"`
	GatewayResponse JSONB           `gorm:"type:jsonb" json:"gateway_response,omitempty"`
	Status          PaymentStatus   `gorm:"size:50;not null;index" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		*j = make(JSONB)
		return nil
	}
}

// Merge copies the entries of other into a copy of j and returns it.
// Keeps what the initiate call recorded when folding webhook payloads in.
func (j JSONB) Merge(other JSONB) JSONB {
	if len(other) == 0 {
		return j
	}
	merged := make(JSONB, len(j)+len(other))
	for k, v := range j {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
