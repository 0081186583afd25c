package provider

import (
	"github.com/designmart/payment-service/internal/config"
	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/designmart/payment-service/internal/infrastructure/provider/restgw"
	"github.com/designmart/payment-service/internal/infrastructure/provider/stripe"
	"go.uber.org/zap"
)

// NewRegistry builds the adapter registry from service configuration.
// Adapters with missing credentials are still registered; the selector skips
// them through their Ready check and surfaces the configuration error.
func NewRegistry(cfg *config.ServiceConfig, logger *zap.Logger) (*provider.Registry, error) {
	adapters := []provider.Adapter{
		stripe.NewAdapter(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, logger),
	}

	for _, gw := range cfg.Gateways {
		adapters = append(adapters, restgw.NewAdapter(gw, logger))
	}

	return provider.NewRegistry(adapters...)
}
