package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/designmart/payment-service/internal/domain/model"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// commissionRepository implements the CommissionRepository interface
type commissionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCommissionRepository creates a new commission repository instance
func NewCommissionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CommissionRepository {
	return &commissionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *commissionRepository) conn(ctx context.Context) *gorm.DB {
	return ExtractTx(ctx, r.db).WithContext(ctx)
}

func (r *commissionRepository) Create(ctx context.Context, commission *model.Commission) error {
	if err := r.conn(ctx).Create(commission).Error; err != nil {
		r.logger.Error("Failed to create commission",
			zap.String("payment_id", commission.PaymentID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create commission: %w", err)
	}
	return nil
}

func (r *commissionRepository) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*model.Commission, error) {
	var commission model.Commission

	err := r.conn(ctx).
		Where("payment_id = ?", paymentID).
		First(&commission).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get commission",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}

	return &commission, nil
}
