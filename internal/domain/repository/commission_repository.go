package repository

import (
	"context"

	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/google/uuid"
)

// CommissionRepository persists the platform's cut of completed payments
type CommissionRepository interface {
	Create(ctx context.Context, commission *model.Commission) error
	GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*model.Commission, error)
}
