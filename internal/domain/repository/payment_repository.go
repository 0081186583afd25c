package repository

import (
	"context"

	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/google/uuid"
)

// PaymentRepository persists payment aggregates
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)

	// GetByIDForUpdate loads the payment under a row lock. Only meaningful
	// inside a transaction started by the TransactionManager.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByTransactionIDForUpdate(ctx context.Context, transactionID string) (*model.Payment, error)

	Update(ctx context.Context, payment *model.Payment) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Payment, error)
}
