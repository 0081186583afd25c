package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/designmart/payment-service/internal/usecase"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	logger       *zap.Logger
	orchestrator *usecase.PaymentOrchestrator
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(logger *zap.Logger, orchestrator *usecase.PaymentOrchestrator) *PaymentHandler {
	return &PaymentHandler{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

type createPaymentRequest struct {
	UserID            int64             `json:"user_id" validate:"required"`
	PurchaseID        *int64            `json:"purchase_id,omitempty"`
	PayeeID           int64             `json:"payee_id" validate:"required"`
	PayeeType         string            `json:"payee_type,omitempty"`
	Amount            decimal.Decimal   `json:"amount" validate:"required"`
	Currency          string            `json:"currency" validate:"required,len=3"`
	Description       string            `json:"description,omitempty"`
	CustomerEmail     string            `json:"customer_email,omitempty"`
	CustomerName      string            `json:"customer_name,omitempty"`
	ReturnURL         string            `json:"return_url,omitempty"`
	CancelURL         string            `json:"cancel_url,omitempty"`
	PreferredGateways []string          `json:"preferred_gateways,omitempty"`
	FallbackGateways  []string          `json:"fallback_gateways,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.orchestrator.ProcessPayment(c.Request().Context(), &usecase.ProcessPaymentRequest{
		UserID:      req.UserID,
		PurchaseID:  req.PurchaseID,
		PayeeID:     req.PayeeID,
		PayeeType:   req.PayeeType,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Customer: provider.Customer{
			ID:    strconv.FormatInt(req.UserID, 10),
			Email: req.CustomerEmail,
			Name:  req.CustomerName,
		},
		ReturnURL:         req.ReturnURL,
		CancelURL:         req.CancelURL,
		PreferredGateways: req.PreferredGateways,
		FallbackGateways:  req.FallbackGateways,
		Metadata:          req.Metadata,
	})
	if err != nil {
		h.logger.Error("Failed to process payment",
			zap.Int64("user_id", req.UserID),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment ID format"})
	}

	payment, err := h.orchestrator.GetPayment(c.Request().Context(), paymentID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, payment)
}

// GetUserPayments handles GET /api/v1/payments
func (h *PaymentHandler) GetUserPayments(c echo.Context) error {
	userID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id parameter"})
	}

	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit parameter"})
		}
	}

	payments, err := h.orchestrator.ListUserPayments(c.Request().Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list payments",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payments": payments,
		"count":    len(payments),
	})
}

// CancelPayment handles POST /api/v1/payments/:id/cancel
func (h *PaymentHandler) CancelPayment(c echo.Context) error {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment ID format"})
	}

	payment, err := h.orchestrator.CancelPayment(c.Request().Context(), paymentID)
	if err != nil {
		h.logger.Error("Failed to cancel payment",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, payment)
}
