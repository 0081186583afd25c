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
	"gorm.io/gorm/clause"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) conn(ctx context.Context) *gorm.DB {
	return ExtractTx(ctx, r.db).WithContext(ctx)
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if err := r.conn(ctx).Create(payment).Error; err != nil {
		r.logger.Error("Failed to create payment",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, r.conn(ctx), "id = ?", id)
}

func (r *paymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	return r.getOne(ctx, r.conn(ctx), "transaction_id = ?", transactionID)
}

func (r *paymentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *paymentRepository) GetByTransactionIDForUpdate(ctx context.Context, transactionID string) (*model.Payment, error) {
	return r.getOne(ctx, r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "transaction_id = ?", transactionID)
}

func (r *paymentRepository) getOne(_ context.Context, db *gorm.DB, query string, arg interface{}) (*model.Payment, error) {
	var payment model.Payment
	err := db.Where(query, arg).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment", zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	if err := r.conn(ctx).Save(payment).Error; err != nil {
		r.logger.Error("Failed to update payment",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Payment, error) {
	var payments []*model.Payment

	query := r.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&payments).Error; err != nil {
		r.logger.Error("Failed to list payments",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}
