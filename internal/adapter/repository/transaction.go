package repository

import (
	"context"

	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"gorm.io/gorm"
)

type txKey struct{}

type transactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a TransactionManager over the given connection
func NewTransactionManager(db *gorm.DB) domainRepo.TransactionManager {
	return &transactionManager{db: db}
}

func (tm *transactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// ExtractTx returns the transaction carried by ctx, or fallback when the call
// is not running inside a managed transaction.
func ExtractTx(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
