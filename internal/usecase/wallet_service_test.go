package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/designmart/payment-service/internal/adapter/repository"
	"github.com/designmart/payment-service/internal/infrastructure/database/testdb"
)

func newWalletService(t *testing.T) *WalletService {
	t.Helper()
	db, err := testdb.New()
	require.NoError(t, err)
	return NewWalletService(repository.NewWalletRepository(db, zap.NewNop()), zap.NewNop())
}

func TestGetBalanceForUnknownWallet(t *testing.T) {
	svc := newWalletService(t)

	wallet, err := svc.GetBalance(context.Background(), 123, "designer")
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.True(t, wallet.Balance.Equal(decimal.Zero))
	assert.EqualValues(t, 123, wallet.UserID)
}

func TestGetTransactionsForUnknownWallet(t *testing.T) {
	svc := newWalletService(t)

	entries, err := svc.GetTransactions(context.Background(), 123, "designer", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWalletServiceRequiresUserType(t *testing.T) {
	svc := newWalletService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "", decimal.NewFromInt(10), "payment", nil, nil)
	require.Error(t, err)

	_, err = svc.Debit(ctx, 1, "", decimal.NewFromInt(10), "withdrawal", nil, nil)
	require.Error(t, err)

	_, _, err = svc.Transfer(ctx, 1, "designer", 2, "", decimal.NewFromInt(10), nil)
	require.Error(t, err)
}

func TestWalletServiceRoundTrip(t *testing.T) {
	svc := newWalletService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, 1, "designer", decimal.NewFromInt(100), "payment", nil, nil)
	require.NoError(t, err)
	_, err = svc.Debit(ctx, 1, "designer", decimal.NewFromInt(40), "withdrawal", nil, nil)
	require.NoError(t, err)

	wallet, err := svc.GetBalance(ctx, 1, "designer")
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(60)))

	entries, err := svc.GetTransactions(ctx, 1, "designer", 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
