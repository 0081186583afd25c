package database

import (
	"github.com/designmart/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.Gateway{},
		&model.Payment{},
		&model.Wallet{},
		&model.WalletTransaction{},
		&model.Commission{},
		&model.WebhookEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes that GORM tags cannot express
func createCustomIndexes(db *gorm.DB) error {
	// transaction_id must be unique where set so webhook correlation by
	// provider transaction id can never match two payments
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_id_unique ON payments (transaction_id) WHERE transaction_id IS NOT NULL`).Error; err != nil {
		return err
	}

	// one active wallet per (user_id, user_type)
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_wallets_active_user_type ON wallets (user_id, user_type) WHERE is_active`).Error; err != nil {
		return err
	}

	return nil
}
