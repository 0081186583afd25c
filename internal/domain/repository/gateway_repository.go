package repository

import (
	"context"

	"github.com/designmart/payment-service/internal/domain/model"
)

// GatewayRepository reads the persisted gateway registry. The orchestration
// core never writes gateway rows.
type GatewayRepository interface {
	GetByCode(ctx context.Context, code string) (*model.Gateway, error)
	ListActive(ctx context.Context) ([]*model.Gateway, error)
}
