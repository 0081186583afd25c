package usecase

import (
	"context"
	"fmt"

	"github.com/designmart/payment-service/internal/domain/model"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletService exposes the ledger operations. All balance math happens in
// the repository under the wallet row lock; this layer validates input and
// shapes results.
type WalletService struct {
	walletRepo domainRepo.WalletRepository
	logger     *zap.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(walletRepo domainRepo.WalletRepository, logger *zap.Logger) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		logger:     logger,
	}
}

// Credit adds funds to the (userID, userType) wallet
func (s *WalletService) Credit(ctx context.Context, userID int64, userType string, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error) {
	if userType == "" {
		return nil, fmt.Errorf("user type is required")
	}
	return s.walletRepo.Credit(ctx, userID, userType, amount, referenceType, referenceID, metadata)
}

// Debit removes funds from the (userID, userType) wallet
func (s *WalletService) Debit(ctx context.Context, userID int64, userType string, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error) {
	if userType == "" {
		return nil, fmt.Errorf("user type is required")
	}
	return s.walletRepo.Debit(ctx, userID, userType, amount, referenceType, referenceID, metadata)
}

// Transfer moves funds between two wallets atomically
func (s *WalletService) Transfer(ctx context.Context, fromUser int64, fromType string, toUser int64, toType string, amount decimal.Decimal, metadata model.JSONB) (*model.WalletTransaction, *model.WalletTransaction, error) {
	if fromType == "" || toType == "" {
		return nil, nil, fmt.Errorf("user type is required")
	}
	return s.walletRepo.Transfer(ctx, fromUser, fromType, toUser, toType, amount, metadata)
}

// GetBalance returns the wallet for (userID, userType), or a zero-balance
// placeholder when the pair has no wallet yet.
func (s *WalletService) GetBalance(ctx context.Context, userID int64, userType string) (*model.Wallet, error) {
	wallet, err := s.walletRepo.GetWallet(ctx, userID, userType)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return &model.Wallet{
			UserID:   userID,
			UserType: userType,
			Balance:  decimal.Zero,
			IsActive: true,
		}, nil
	}
	return wallet, nil
}

// GetTransactions returns the wallet's ledger history, newest first
func (s *WalletService) GetTransactions(ctx context.Context, userID int64, userType string, limit, offset int) ([]*model.WalletTransaction, error) {
	wallet, err := s.walletRepo.GetWallet(ctx, userID, userType)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return []*model.WalletTransaction{}, nil
	}

	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}

	return s.walletRepo.GetTransactions(ctx, wallet.ID, limit, offset)
}
