package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/designmart/payment-service/internal/adapter/handler/http"
	"github.com/designmart/payment-service/internal/config"
	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/designmart/payment-service/internal/infrastructure/database"
	"github.com/designmart/payment-service/internal/infrastructure/notify"
	"github.com/designmart/payment-service/internal/usecase"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	registry *provider.Registry
	queue    *notify.RetryQueue
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, registry *provider.Registry, queue *notify.RetryQueue) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		repos:    repos,
		registry: registry,
		queue:    queue,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Wire usecases
	selector := usecase.NewGatewaySelector(s.repos.Gateway, s.registry, s.logger)
	orchestrator := usecase.NewPaymentOrchestrator(
		selector,
		s.registry,
		s.repos.Payment,
		s.repos.Commission,
		s.repos.Wallet,
		s.repos.WebhookEvent,
		s.repos.Tx,
		s.queue,
		s.config.Service.CommissionRate,
		s.logger,
	)
	walletService := usecase.NewWalletService(s.repos.Wallet, s.logger)

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(s.logger, orchestrator)
	webhookHandler := handlers.NewWebhookHandler(s.logger, orchestrator)
	walletHandler := handlers.NewWalletHandler(s.logger, walletService)
	retryQueueHandler := handlers.NewRetryQueueHandler(s.logger, s.queue)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	v1.POST("/payments", paymentHandler.CreatePayment)
	v1.GET("/payments", paymentHandler.GetUserPayments)
	v1.GET("/payments/:id", paymentHandler.GetPayment)
	v1.POST("/payments/:id/cancel", paymentHandler.CancelPayment)

	v1.GET("/wallets/:userType/:userID", walletHandler.GetBalance)
	v1.GET("/wallets/:userType/:userID/transactions", walletHandler.GetTransactions)

	// Internal routes
	internal := v1.Group("/internal")
	internal.POST("/wallets/credit", walletHandler.Credit)
	internal.POST("/wallets/debit", walletHandler.Debit)
	internal.POST("/wallets/transfer", walletHandler.Transfer)
	internal.GET("/retry-queue", retryQueueHandler.GetStatus)
	internal.DELETE("/retry-queue", retryQueueHandler.Clear)

	// Webhook route (outside API versioning)
	s.echo.POST("/webhook/:gateway", webhookHandler.HandleWebhook)
}
