package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/designmart/payment-service/internal/usecase"
)

// WebhookHandler receives inbound provider webhooks
type WebhookHandler struct {
	logger       *zap.Logger
	orchestrator *usecase.PaymentOrchestrator
}

// NewWebhookHandler creates a new webhook handler instance
func NewWebhookHandler(logger *zap.Logger, orchestrator *usecase.PaymentOrchestrator) *WebhookHandler {
	return &WebhookHandler{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

// HandleWebhook handles POST /webhook/:gateway. The raw body is passed through
// untouched; signature verification needs the exact bytes the provider signed.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	gateway := c.Param("gateway")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading webhook body",
			zap.String("gateway", gateway),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "error reading request body"})
	}

	headers := c.Request().Header
	signature := headers.Get("Stripe-Signature")
	if signature == "" {
		signature = headers.Get("X-Signature")
	}

	outcome, err := h.orchestrator.ProcessWebhook(c.Request().Context(), gateway, body, signature, headers)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"received":   true,
		"payment_id": outcome.PaymentID,
		"status":     outcome.Status,
		"applied":    outcome.Applied,
	})
}
