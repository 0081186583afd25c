package repository

import (
	"context"
	"fmt"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultWalletCurrency = "USD"

// walletRepository implements the WalletRepository interface
type walletRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWalletRepository creates a new wallet repository instance
func NewWalletRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WalletRepository {
	return &walletRepository{
		db:     db,
		logger: logger,
	}
}

func (r *walletRepository) conn(ctx context.Context) *gorm.DB {
	return ExtractTx(ctx, r.db).WithContext(ctx)
}

// lockWallet loads the active wallet for (userID, userType) under a row lock,
// creating it with a zero balance when it does not exist yet.
func lockWallet(tx *gorm.DB, userID int64, userType string) (*model.Wallet, error) {
	var wallet model.Wallet

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Attrs(model.Wallet{
			ID:       uuid.New(),
			Balance:  decimal.Zero,
			Currency: defaultWalletCurrency,
			IsActive: true,
		}).
		FirstOrCreate(&wallet, model.Wallet{
			UserID:   userID,
			UserType: userType,
		}).Error

	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	return &wallet, nil
}

// applyCredit appends a credit entry and moves the wallet balance.
// Must run inside a transaction holding the wallet row lock.
func (r *walletRepository) applyCredit(tx *gorm.DB, wallet *model.Wallet, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error) {
	entry := &model.WalletTransaction{
		WalletID:        wallet.ID,
		TransactionType: model.WalletTransactionCredit,
		Amount:          amount,
		BalanceBefore:   wallet.Balance,
		BalanceAfter:    wallet.Balance.Add(amount),
		ReferenceType:   referenceType,
		ReferenceID:     referenceID,
		Metadata:        metadata,
	}

	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet transaction: %w", err)
	}

	wallet.Balance = entry.BalanceAfter
	if err := tx.Save(wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	return entry, nil
}

// applyDebit checks the balance under the lock and appends a debit entry.
func (r *walletRepository) applyDebit(tx *gorm.DB, wallet *model.Wallet, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error) {
	if wallet.Balance.LessThan(amount) {
		return nil, customErr.NewInsufficientBalanceError(amount, wallet.Balance)
	}

	entry := &model.WalletTransaction{
		WalletID:        wallet.ID,
		TransactionType: model.WalletTransactionDebit,
		Amount:          amount,
		BalanceBefore:   wallet.Balance,
		BalanceAfter:    wallet.Balance.Sub(amount),
		ReferenceType:   referenceType,
		ReferenceID:     referenceID,
		Metadata:        metadata,
	}

	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet transaction: %w", err)
	}

	wallet.Balance = entry.BalanceAfter
	if err := tx.Save(wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	return entry, nil
}

// Credit adds funds to a wallet atomically, creating the wallet when absent
func (r *walletRepository) Credit(ctx context.Context, userID int64, userType string, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, &customErr.InvalidAmountError{Amount: amount}
	}

	var entry *model.WalletTransaction

	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID, userType)
		if err != nil {
			return err
		}

		entry, err = r.applyCredit(tx, wallet, amount, referenceType, referenceID, metadata)
		return err
	})

	if err != nil {
		r.logger.Error("Failed to credit wallet",
			zap.Int64("user_id", userID),
			zap.String("user_type", userType),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Wallet credited",
		zap.Int64("user_id", userID),
		zap.String("user_type", userType),
		zap.String("amount", amount.String()),
		zap.String("balance_after", entry.BalanceAfter.String()))

	return entry, nil
}

// Debit removes funds from a wallet atomically. The balance check happens
// under the same row lock as the update so concurrent debits cannot race
// past each other.
func (r *walletRepository) Debit(ctx context.Context, userID int64, userType string, amount decimal.Decimal, referenceType string, referenceID *string, metadata model.JSONB) (*model.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, &customErr.InvalidAmountError{Amount: amount}
	}

	var entry *model.WalletTransaction

	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID, userType)
		if err != nil {
			return err
		}

		entry, err = r.applyDebit(tx, wallet, amount, referenceType, referenceID, metadata)
		return err
	})

	if err != nil {
		r.logger.Warn("Failed to debit wallet",
			zap.Int64("user_id", userID),
			zap.String("user_type", userType),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Wallet debited",
		zap.Int64("user_id", userID),
		zap.String("user_type", userType),
		zap.String("amount", amount.String()),
		zap.String("balance_after", entry.BalanceAfter.String()))

	return entry, nil
}

// Transfer moves funds between two wallets as debit-then-credit inside one
// transaction. If either side fails the whole transfer rolls back.
func (r *walletRepository) Transfer(ctx context.Context, fromUser int64, fromType string, toUser int64, toType string, amount decimal.Decimal, metadata model.JSONB) (*model.WalletTransaction, *model.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, &customErr.InvalidAmountError{Amount: amount}
	}
	if fromUser == toUser && fromType == toType {
		return nil, nil, fmt.Errorf("cannot transfer to the same wallet")
	}

	var debitTx, creditTx *model.WalletTransaction

	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		// Both rows are locked in canonical (user_id, user_type) order so two
		// opposite transfers running concurrently cannot deadlock each other.
		fromFirst := fromUser < toUser || (fromUser == toUser && fromType < toType)

		var fromWallet, toWallet *model.Wallet
		var err error
		if fromFirst {
			if fromWallet, err = lockWallet(tx, fromUser, fromType); err != nil {
				return err
			}
			if toWallet, err = lockWallet(tx, toUser, toType); err != nil {
				return err
			}
		} else {
			if toWallet, err = lockWallet(tx, toUser, toType); err != nil {
				return err
			}
			if fromWallet, err = lockWallet(tx, fromUser, fromType); err != nil {
				return err
			}
		}

		debitTx, err = r.applyDebit(tx, fromWallet, amount, "transfer", nil, metadata)
		if err != nil {
			return err
		}

		creditTx, err = r.applyCredit(tx, toWallet, amount, "transfer", nil, metadata)
		return err
	})

	if err != nil {
		r.logger.Warn("Failed to transfer between wallets",
			zap.Int64("from_user", fromUser),
			zap.Int64("to_user", toUser),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, nil, err
	}

	r.logger.Info("Wallet transfer completed",
		zap.Int64("from_user", fromUser),
		zap.Int64("to_user", toUser),
		zap.String("amount", amount.String()))

	return debitTx, creditTx, nil
}

// GetWallet returns the active wallet for (userID, userType), or nil when the
// pair has no wallet yet.
func (r *walletRepository) GetWallet(ctx context.Context, userID int64, userType string) (*model.Wallet, error) {
	var wallet model.Wallet

	err := r.conn(ctx).
		Where("user_id = ? AND user_type = ?", userID, userType).
		First(&wallet).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error("Failed to get wallet",
			zap.Int64("user_id", userID),
			zap.String("user_type", userType),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// GetTransactions returns the wallet's ledger history, newest first
func (r *walletRepository) GetTransactions(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*model.WalletTransaction, error) {
	var transactions []*model.WalletTransaction

	query := r.conn(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&transactions).Error; err != nil {
		r.logger.Error("Failed to get wallet transactions",
			zap.String("wallet_id", walletID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get wallet transactions: %w", err)
	}

	return transactions, nil
}
