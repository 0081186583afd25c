package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/designmart/payment-service/internal/infrastructure/notify"
)

// RetryQueueHandler exposes the notification retry queue for operators
type RetryQueueHandler struct {
	logger *zap.Logger
	queue  *notify.RetryQueue
}

// NewRetryQueueHandler creates a new retry queue handler instance
func NewRetryQueueHandler(logger *zap.Logger, queue *notify.RetryQueue) *RetryQueueHandler {
	return &RetryQueueHandler{
		logger: logger,
		queue:  queue,
	}
}

// GetStatus handles GET /api/v1/internal/retry-queue
func (h *RetryQueueHandler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.queue.Status())
}

// Clear handles DELETE /api/v1/internal/retry-queue
func (h *RetryQueueHandler) Clear(c echo.Context) error {
	cleared := h.queue.Clear()
	h.logger.Info("Retry queue cleared", zap.Int("discarded", cleared))
	return c.JSON(http.StatusOK, echo.Map{"cleared": cleared})
}
