package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Commission records the platform's cut of one completed payment.
// At most one row exists per payment; the unique index is the guard
// against double calculation on webhook replays.
type Commission struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;unique" json:"payment_id"`
	Rate      decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"rate"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type      string          `gorm:"size:50;not null;default:'percentage'" json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Commission) TableName() string {
	return "commissions"
}
