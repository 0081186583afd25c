package repository

import (
	"context"

	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletRepository performs atomic ledger mutations. Every mutating method
// locks the wallet row for the duration of the balance check and the
// transaction-log append.
type WalletRepository interface {
	Credit(ctx context.Context, userID int64, userType string, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error)
	Debit(ctx context.Context, userID int64, userType string, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error)
	Transfer(ctx context.Context, fromUser int64, fromType string, toUser int64, toType string, amount decimal.Decimal, metadata model.JSONB) (*model.WalletTransaction, *model.WalletTransaction, error)

	GetWallet(ctx context.Context, userID int64, userType string) (*model.Wallet, error)
	GetTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*model.WalletTransaction, error)
}
