package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/provider"
)

// errorJSON maps domain errors to HTTP responses. Every coded error keeps its
// code in the body so clients can branch without parsing messages.
func errorJSON(c echo.Context, err error) error {
	var (
		unavailable  *customErr.GatewayUnavailableError
		config       *customErr.ConfigurationError
		verification *customErr.VerificationError
		notFound     *customErr.PaymentNotFoundError
		transition   *customErr.InvalidTransitionError
		balance      *customErr.InsufficientBalanceError
		amount       *customErr.InvalidAmountError
		providerErr  *provider.Error
	)

	switch {
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": unavailable.Error(),
			"code":  unavailable.Code(),
		})
	case errors.As(err, &verification):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": verification.Error(),
			"code":  verification.Code(),
		})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": notFound.Error(),
			"code":  notFound.Code(),
		})
	case errors.As(err, &transition):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": transition.Error(),
			"code":  transition.Code(),
		})
	case errors.As(err, &balance):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": balance.Error(),
			"code":  balance.Code(),
		})
	case errors.As(err, &amount):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": amount.Error(),
			"code":  amount.Code(),
		})
	case errors.As(err, &config):
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "gateway configuration error",
			"code":  config.Code(),
		})
	case errors.As(err, &providerErr):
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error": providerErr.Error(),
			"code":  customErr.CodeAdapter,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "internal server error",
		})
	}
}
