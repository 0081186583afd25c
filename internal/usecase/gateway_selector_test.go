package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/designmart/payment-service/internal/adapter/repository"
	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/designmart/payment-service/internal/infrastructure/database/testdb"
	"github.com/designmart/payment-service/internal/infrastructure/provider/mock"
)

func newSelectorFixture(t *testing.T, adapters ...provider.Adapter) (*GatewaySelector, *gorm.DB) {
	t.Helper()

	db, err := testdb.New()
	require.NoError(t, err)

	registry, err := provider.NewRegistry(adapters...)
	require.NoError(t, err)

	gatewayRepo := repository.NewGatewayRepository(db, zap.NewNop())
	return NewGatewaySelector(gatewayRepo, registry, zap.NewNop()), db
}

func seedGateway(t *testing.T, db *gorm.DB, code string, active bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.Gateway{Code: code, Name: code, IsActive: active}).Error)
}

func TestSelectPrefersFirstHealthyGateway(t *testing.T) {
	selector, db := newSelectorFixture(t, mock.NewAdapter("alpha"), mock.NewAdapter("beta"))
	seedGateway(t, db, "alpha", true)
	seedGateway(t, db, "beta", true)

	gateway, adapter, err := selector.Select(context.Background(), []string{"alpha"}, []string{"beta"})
	require.NoError(t, err)
	assert.Equal(t, "alpha", gateway.Code)
	assert.Equal(t, "alpha", adapter.Code())
}

func TestSelectSkipsInactiveAndMissingGateways(t *testing.T) {
	selector, db := newSelectorFixture(t, mock.NewAdapter("alpha"), mock.NewAdapter("beta"))
	seedGateway(t, db, "alpha", false)
	seedGateway(t, db, "beta", true)

	// "ghost" has no row at all, "alpha" is disabled
	gateway, _, err := selector.Select(context.Background(), []string{"ghost", "alpha"}, []string{"beta"})
	require.NoError(t, err)
	assert.Equal(t, "beta", gateway.Code)
}

func TestSelectSkipsUnreadyAdapters(t *testing.T) {
	broken := mock.NewAdapter("alpha")
	broken.ReadyErr = &customErr.ConfigurationError{GatewayCode: "alpha", Missing: "secret_key"}

	selector, db := newSelectorFixture(t, broken, mock.NewAdapter("beta"))
	seedGateway(t, db, "alpha", true)
	seedGateway(t, db, "beta", true)

	gateway, _, err := selector.Select(context.Background(), []string{"alpha", "beta"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "beta", gateway.Code)
}

func TestSelectExhaustedReturnsGatewayUnavailable(t *testing.T) {
	broken := mock.NewAdapter("alpha")
	broken.ReadyErr = &customErr.ConfigurationError{GatewayCode: "alpha", Missing: "secret_key"}

	selector, db := newSelectorFixture(t, broken)
	seedGateway(t, db, "alpha", true)

	_, _, err := selector.Select(context.Background(), []string{"alpha", "ghost"}, []string{"alpha"})
	require.Error(t, err)

	var unavailable *customErr.GatewayUnavailableError
	require.ErrorAs(t, err, &unavailable)
	// Duplicates collapse; order is preserved
	assert.Equal(t, []string{"alpha", "ghost"}, unavailable.Tried)
}

func TestSelectIsDeterministic(t *testing.T) {
	selector, db := newSelectorFixture(t, mock.NewAdapter("alpha"), mock.NewAdapter("beta"))
	seedGateway(t, db, "alpha", true)
	seedGateway(t, db, "beta", true)

	for i := 0; i < 5; i++ {
		gateway, _, err := selector.Select(context.Background(), []string{"beta", "alpha"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "beta", gateway.Code)
	}
}
