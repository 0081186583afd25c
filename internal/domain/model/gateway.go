package model

import "time"

// Gateway represents a configured external payment provider instance.
// Rows are managed by configuration tooling; the orchestration core only
// reads them (activation flag, opaque config).
type Gateway struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"unique;not null;size:50" json:"code"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	Config    JSONB     `gorm:"type:jsonb" json:"config,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Gateway) TableName() string {
	return "payment_gateways"
}
