package testdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/designmart/payment-service/internal/domain/model"
)

func TestNewMigratesFullSchema(t *testing.T) {
	db, err := New()
	require.NoError(t, err)

	for _, table := range []string{
		"payment_gateways", "payments", "wallets",
		"wallet_transactions", "commissions", "webhook_events",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestTimestampsAreAutoPopulated(t *testing.T) {
	db, err := New()
	require.NoError(t, err)

	payment := &model.Payment{
		ID:            uuid.New(),
		UserID:        1,
		GatewayID:     1,
		Amount:        decimal.NewFromInt(10),
		Currency:      "USD",
		PaymentMethod: "stripe",
		Status:        model.PaymentStatusPending,
	}
	require.NoError(t, db.Create(payment).Error)

	var stored model.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.False(t, stored.UpdatedAt.IsZero())
}
