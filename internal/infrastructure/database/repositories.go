package database

import (
	"github.com/designmart/payment-service/internal/adapter/repository"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Payment      domainRepo.PaymentRepository
	Gateway      domainRepo.GatewayRepository
	Wallet       domainRepo.WalletRepository
	Commission   domainRepo.CommissionRepository
	WebhookEvent domainRepo.WebhookEventRepository
	Tx           domainRepo.TransactionManager
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payment:      repository.NewPaymentRepository(db, logger),
		Gateway:      repository.NewGatewayRepository(db, logger),
		Wallet:       repository.NewWalletRepository(db, logger),
		Commission:   repository.NewCommissionRepository(db, logger),
		WebhookEvent: repository.NewWebhookEventRepository(db, logger),
		Tx:           repository.NewTransactionManager(db),
	}
}
