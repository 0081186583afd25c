package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/designmart/payment-service/internal/domain/model"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gatewayRepository implements the GatewayRepository interface
type gatewayRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGatewayRepository creates a new gateway repository instance
func NewGatewayRepository(db *gorm.DB, logger *zap.Logger) domainRepo.GatewayRepository {
	return &gatewayRepository{
		db:     db,
		logger: logger,
	}
}

func (r *gatewayRepository) conn(ctx context.Context) *gorm.DB {
	return ExtractTx(ctx, r.db).WithContext(ctx)
}

func (r *gatewayRepository) GetByCode(ctx context.Context, code string) (*model.Gateway, error) {
	var gateway model.Gateway

	err := r.conn(ctx).
		Where("code = ?", code).
		First(&gateway).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get gateway",
			zap.String("code", code),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get gateway: %w", err)
	}

	return &gateway, nil
}

func (r *gatewayRepository) ListActive(ctx context.Context) ([]*model.Gateway, error) {
	var gateways []*model.Gateway

	err := r.conn(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&gateways).Error

	if err != nil {
		r.logger.Error("Failed to list active gateways", zap.Error(err))
		return nil, fmt.Errorf("failed to list active gateways: %w", err)
	}

	return gateways, nil
}
