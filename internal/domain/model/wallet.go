package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is an internal balance bucket for one (user, role) pair.
// Exactly one active wallet exists per pair; wallets are created lazily on
// first ledger operation. The balance is always the sum of the wallet's
// transaction deltas and never goes negative.
type Wallet struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    int64           `gorm:"not null;uniqueIndex:idx_wallets_user_type" json:"user_id"`
	UserType  string          `gorm:"size:50;not null;uniqueIndex:idx_wallets_user_type" json:"user_type"`
	Balance   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	Currency  string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransactionType represents the direction of a ledger entry
type WalletTransactionType string

const (
	WalletTransactionCredit WalletTransactionType = "credit"
	WalletTransactionDebit  WalletTransactionType = "debit"
)

// Scan implements sql.Scanner interface
func (t *WalletTransactionType) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*t = WalletTransactionType(v)
	case []byte:
		*t = WalletTransactionType(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (t WalletTransactionType) Value() (driver.Value, error) {
	return string(t), nil
}

// WalletTransaction is an append-only ledger entry. Rows are never updated
// or deleted; balance_after - balance_before always equals the signed amount.
type WalletTransaction struct {
	ID              int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_wallet_transactions_wallet_created" json:"wallet_id"`
	TransactionType WalletTransactionType `gorm:"size:10;not null" json:"transaction_type"`
	Amount          decimal.Decimal       `gorm:"type:decimal(15,2);not null" json:"amount"`
	BalanceBefore   decimal.Decimal       `gorm:"type:decimal(15,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal       `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	ReferenceType   string                `gorm:"size:50;not null" json:"reference_type"`
	ReferenceID     *string               `gorm:"size:191;index" json:"reference_id,omitempty"`
	Metadata        JSONB                 `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time             `gorm:"index:idx_wallet_transactions_wallet_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// Delta returns the signed balance change of the entry.
func (t *WalletTransaction) Delta() decimal.Decimal {
	if t.TransactionType == WalletTransactionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
