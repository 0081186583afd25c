package usecase

import (
	"context"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"go.uber.org/zap"
)

// GatewaySelector resolves which configured gateway should handle a payment.
// Selection is a pure function of the registry snapshot and the input lists,
// so identical inputs always pick the same gateway.
type GatewaySelector struct {
	gatewayRepo domainRepo.GatewayRepository
	registry    *provider.Registry
	logger      *zap.Logger
}

// NewGatewaySelector creates a new gateway selector
func NewGatewaySelector(gatewayRepo domainRepo.GatewayRepository, registry *provider.Registry, logger *zap.Logger) *GatewaySelector {
	return &GatewaySelector{
		gatewayRepo: gatewayRepo,
		registry:    registry,
		logger:      logger,
	}
}

// Select walks the preferred then fallback codes in order and returns the
// first gateway that is persisted, active and whose adapter reports ready.
// Exhausting the list is a retryable-by-caller condition, not a crash.
func (s *GatewaySelector) Select(ctx context.Context, preferred, fallback []string) (*model.Gateway, provider.Adapter, error) {
	codes := dedupeCodes(preferred, fallback)

	for _, code := range codes {
		gateway, err := s.gatewayRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		if gateway == nil || !gateway.IsActive {
			continue
		}

		adapter, ok := s.registry.Get(code)
		if !ok {
			s.logger.Warn("Gateway has no registered adapter",
				zap.String("code", code))
			continue
		}

		if err := adapter.Ready(); err != nil {
			s.logger.Warn("Gateway adapter not ready, skipping",
				zap.String("code", code),
				zap.Error(err))
			continue
		}

		return gateway, adapter, nil
	}

	return nil, nil, &customErr.GatewayUnavailableError{Tried: codes}
}

// dedupeCodes concatenates preferred then fallback, dropping repeats while
// preserving first-seen order.
func dedupeCodes(preferred, fallback []string) []string {
	seen := make(map[string]struct{}, len(preferred)+len(fallback))
	codes := make([]string, 0, len(preferred)+len(fallback))

	for _, code := range append(append([]string{}, preferred...), fallback...) {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes
}
