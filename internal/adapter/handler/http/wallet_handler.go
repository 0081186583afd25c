package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/usecase"
)

// WalletHandler handles wallet ledger HTTP requests
type WalletHandler struct {
	logger        *zap.Logger
	walletService *usecase.WalletService
}

// NewWalletHandler creates a new wallet handler instance
func NewWalletHandler(logger *zap.Logger, walletService *usecase.WalletService) *WalletHandler {
	return &WalletHandler{
		logger:        logger,
		walletService: walletService,
	}
}

type walletMutationRequest struct {
	UserID        int64           `json:"user_id" validate:"required"`
	UserType      string          `json:"user_type" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   *string         `json:"reference_id,omitempty"`
	Metadata      model.JSONB     `json:"metadata,omitempty"`
}

type transferRequest struct {
	FromUserID   int64           `json:"from_user_id" validate:"required"`
	FromUserType string          `json:"from_user_type" validate:"required"`
	ToUserID     int64           `json:"to_user_id" validate:"required"`
	ToUserType   string          `json:"to_user_type" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Metadata     model.JSONB     `json:"metadata,omitempty"`
}

// GetBalance handles GET /api/v1/wallets/:userType/:userID
func (h *WalletHandler) GetBalance(c echo.Context) error {
	userID, userType, err := walletParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID format"})
	}

	wallet, err := h.walletService.GetBalance(c.Request().Context(), userID, userType)
	if err != nil {
		h.logger.Error("Failed to get wallet balance",
			zap.Int64("user_id", userID),
			zap.String("user_type", userType),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   wallet.UserID,
		"user_type": wallet.UserType,
		"balance":   wallet.Balance.String(),
		"currency":  wallet.Currency,
	})
}

// GetTransactions handles GET /api/v1/wallets/:userType/:userID/transactions
func (h *WalletHandler) GetTransactions(c echo.Context) error {
	userID, userType, err := walletParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID format"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	transactions, err := h.walletService.GetTransactions(c.Request().Context(), userID, userType, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get wallet transactions",
			zap.Int64("user_id", userID),
			zap.String("user_type", userType),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// Credit handles POST /api/v1/internal/wallets/credit
func (h *WalletHandler) Credit(c echo.Context) error {
	var req walletMutationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entry, err := h.walletService.Credit(c.Request().Context(), req.UserID, req.UserType, req.Amount, req.ReferenceType, req.ReferenceID, req.Metadata)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// Debit handles POST /api/v1/internal/wallets/debit
func (h *WalletHandler) Debit(c echo.Context) error {
	var req walletMutationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entry, err := h.walletService.Debit(c.Request().Context(), req.UserID, req.UserType, req.Amount, req.ReferenceType, req.ReferenceID, req.Metadata)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// Transfer handles POST /api/v1/internal/wallets/transfer
func (h *WalletHandler) Transfer(c echo.Context) error {
	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	debit, credit, err := h.walletService.Transfer(c.Request().Context(), req.FromUserID, req.FromUserType, req.ToUserID, req.ToUserType, req.Amount, req.Metadata)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"debit":  debit,
		"credit": credit,
	})
}

func walletParams(c echo.Context) (int64, string, error) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		return 0, "", err
	}
	return userID, c.Param("userType"), nil
}
