package usecase

import (
	"context"
	"net/http"
	"time"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
	domainRepo "github.com/designmart/payment-service/internal/domain/repository"
	"github.com/designmart/payment-service/internal/infrastructure/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	initiateTimeout = 60 * time.Second
	cancelTimeout   = 30 * time.Second
)

// ProcessPaymentRequest carries everything needed to start a payment
type ProcessPaymentRequest struct {
	UserID      int64
	PurchaseID  *int64
	PayeeID     int64
	PayeeType   string
	Amount      decimal.Decimal
	Currency    string
	Description string
	Customer    provider.Customer
	ReturnURL   string
	CancelURL   string

	PreferredGateways []string
	FallbackGateways  []string
	Metadata          map[string]string
}

// ProcessPaymentResult reports the created payment and what the client needs
// to continue the flow with the provider.
type ProcessPaymentResult struct {
	Payment               *model.Payment `json:"payment"`
	GatewayCode           string         `json:"gateway_code"`
	ProviderTransactionID string         `json:"provider_transaction_id,omitempty"`
	PaymentURL            string         `json:"payment_url,omitempty"`
	ClientSecret          string         `json:"client_secret,omitempty"`
}

// WebhookOutcome summarizes what a processed webhook did to the payment
type WebhookOutcome struct {
	PaymentID uuid.UUID           `json:"payment_id"`
	EventType string              `json:"event_type"`
	Status    model.PaymentStatus `json:"status"`
	Applied   bool                `json:"applied"`
}

// PaymentOrchestrator drives the payment lifecycle: gateway selection,
// initiation, webhook reconciliation and cancellation. All settlement side
// effects (commission, wallet credit) happen here and nowhere else.
type PaymentOrchestrator struct {
	selector         *GatewaySelector
	registry         *provider.Registry
	paymentRepo      domainRepo.PaymentRepository
	commissionRepo   domainRepo.CommissionRepository
	walletRepo       domainRepo.WalletRepository
	webhookEventRepo domainRepo.WebhookEventRepository
	txManager        domainRepo.TransactionManager
	queue            *notify.RetryQueue
	commissionRate   decimal.Decimal
	logger           *zap.Logger
}

// NewPaymentOrchestrator creates a new payment orchestrator
func NewPaymentOrchestrator(
	selector *GatewaySelector,
	registry *provider.Registry,
	paymentRepo domainRepo.PaymentRepository,
	commissionRepo domainRepo.CommissionRepository,
	walletRepo domainRepo.WalletRepository,
	webhookEventRepo domainRepo.WebhookEventRepository,
	txManager domainRepo.TransactionManager,
	queue *notify.RetryQueue,
	commissionRate float64,
	logger *zap.Logger,
) *PaymentOrchestrator {
	return &PaymentOrchestrator{
		selector:         selector,
		registry:         registry,
		paymentRepo:      paymentRepo,
		commissionRepo:   commissionRepo,
		walletRepo:       walletRepo,
		webhookEventRepo: webhookEventRepo,
		txManager:        txManager,
		queue:            queue,
		commissionRate:   decimal.NewFromFloat(commissionRate),
		logger:           logger,
	}
}

// ProcessPayment selects a gateway, persists the payment in pending state and
// initiates it with the provider. The payment row exists before any external
// call so a crash mid-initiation leaves a traceable pending record instead of
// charged-but-unknown money.
func (o *PaymentOrchestrator) ProcessPayment(ctx context.Context, req *ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, customErr.NewInvalidAmountError(req.Amount)
	}

	gateway, adapter, err := o.selector.Select(ctx, req.PreferredGateways, req.FallbackGateways)
	if err != nil {
		return nil, err
	}

	payeeType := req.PayeeType
	if payeeType == "" {
		payeeType = "designer"
	}

	payment := &model.Payment{
		ID:            uuid.New(),
		UserID:        req.UserID,
		GatewayID:     gateway.ID,
		PurchaseID:    req.PurchaseID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: gateway.Code,
		Status:        model.PaymentStatusPending,
		GatewayResponse: model.JSONB{
			"payee_id":   req.PayeeID,
			"payee_type": payeeType,
		},
	}

	if err := o.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	o.logger.Info("Payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("gateway", gateway.Code),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", req.Currency))

	initCtx, cancel := context.WithTimeout(ctx, initiateTimeout)
	defer cancel()

	resp, err := adapter.Initiate(initCtx, &provider.InitiateRequest{
		PaymentID:   payment.ID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Customer:    req.Customer,
		ReturnURL:   req.ReturnURL,
		CancelURL:   req.CancelURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if _, recErr := o.finalizeInitiate(ctx, payment.ID, model.PaymentStatusFailed, "", model.JSONB{
			"initiate_error": err.Error(),
		}); recErr != nil {
			o.logger.Error("Failed to record initiation failure",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(recErr))
		}

		o.logger.Error("Payment initiation failed",
			zap.String("payment_id", payment.ID.String()),
			zap.String("gateway", gateway.Code),
			zap.Error(err))
		return nil, err
	}

	payment, err = o.finalizeInitiate(ctx, payment.ID, resp.Status, resp.ProviderTransactionID, model.JSONB{
		"initiate": resp.Raw,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("Payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("gateway", gateway.Code),
		zap.String("status", string(payment.Status)))

	return &ProcessPaymentResult{
		Payment:               payment,
		GatewayCode:           gateway.Code,
		ProviderTransactionID: resp.ProviderTransactionID,
		PaymentURL:            resp.PaymentURL,
		ClientSecret:          resp.ClientSecret,
	}, nil
}

// ProcessWebhook verifies, audits and reconciles one inbound provider
// webhook. Reconciliation runs in a single database transaction holding a
// row lock on the payment, so duplicate and out-of-order deliveries serialize
// and apply exactly once.
func (o *PaymentOrchestrator) ProcessWebhook(ctx context.Context, gatewayCode string, payload []byte, signature string, headers http.Header) (*WebhookOutcome, error) {
	adapter, ok := o.registry.Get(gatewayCode)
	if !ok {
		return nil, &customErr.ConfigurationError{GatewayCode: gatewayCode, Missing: "adapter"}
	}

	event, err := adapter.VerifyWebhook(payload, signature, headers)
	if err != nil {
		o.logger.Warn("Webhook verification failed",
			zap.String("gateway", gatewayCode),
			zap.Error(err))
		return nil, err
	}

	o.auditEvent(ctx, gatewayCode, event)

	result, err := adapter.ParseWebhook(event)
	if err != nil {
		o.markEventFailed(ctx, event.ProviderEventID, err)
		return nil, err
	}

	outcome := &WebhookOutcome{
		EventType: result.EventType,
		Status:    result.Status,
	}

	var settledPayment *model.Payment

	err = o.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		payment, err := o.resolvePaymentForUpdate(txCtx, result)
		if err != nil {
			return err
		}

		outcome.PaymentID = payment.ID
		current := payment.Status
		target := result.Status

		if target == current {
			// Duplicate delivery. Nothing to transition, but a completed
			// payment still gets its settlement side effects checked in case
			// an earlier delivery crashed between update and settlement.
			o.logger.Info("Webhook replay ignored",
				zap.String("payment_id", payment.ID.String()),
				zap.String("status", string(current)),
				zap.String("event_id", event.ProviderEventID))
			if current == model.PaymentStatusCompleted {
				return o.settle(txCtx, payment)
			}
			return nil
		}

		if !current.CanTransitionTo(target) {
			if current.IsTerminal() && target.IsTerminal() {
				o.logger.Error("Conflicting terminal statuses for payment",
					zap.String("payment_id", payment.ID.String()),
					zap.String("current", string(current)),
					zap.String("target", string(target)),
					zap.String("event_id", event.ProviderEventID))
			}
			return customErr.NewInvalidTransitionError(payment.ID, current, target)
		}

		payment.Status = target
		if payment.TransactionID == nil && result.ProviderTransactionID != "" {
			txID := result.ProviderTransactionID
			payment.TransactionID = &txID
		}
		payment.GatewayResponse = payment.GatewayResponse.Merge(model.JSONB{
			"webhook": result.Raw,
		})

		if err := o.paymentRepo.Update(txCtx, payment); err != nil {
			return err
		}

		if target == model.PaymentStatusCompleted {
			if err := o.settle(txCtx, payment); err != nil {
				return err
			}
		}

		outcome.Applied = true
		settledPayment = payment
		return nil
	})
	if err != nil {
		o.markEventFailed(ctx, event.ProviderEventID, err)
		return nil, err
	}

	if markErr := o.webhookEventRepo.MarkProcessed(ctx, event.ProviderEventID); markErr != nil {
		o.logger.Error("Failed to mark webhook event processed",
			zap.String("event_id", event.ProviderEventID),
			zap.Error(markErr))
	}

	if outcome.Applied && settledPayment != nil {
		o.queue.Dispatch(settledPayment.ID.String()+":"+string(settledPayment.Status), map[string]interface{}{
			"payment_id": settledPayment.ID.String(),
			"status":     string(settledPayment.Status),
			"amount":     settledPayment.Amount.String(),
			"currency":   settledPayment.Currency,
			"gateway":    gatewayCode,
			"event_type": result.EventType,
		})

		o.logger.Info("Payment status updated",
			zap.String("payment_id", settledPayment.ID.String()),
			zap.String("status", string(settledPayment.Status)),
			zap.String("gateway", gatewayCode))
	}

	return outcome, nil
}

// CancelPayment voids a pending payment. Only pending payments can be
// cancelled; the transition recheck under lock loses gracefully to a
// concurrent success webhook.
func (o *PaymentOrchestrator) CancelPayment(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := o.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, customErr.NewPaymentNotFoundError(paymentID.String())
	}
	if payment.Status != model.PaymentStatusPending {
		return nil, customErr.NewInvalidTransitionError(payment.ID, payment.Status, model.PaymentStatusFailed)
	}

	reason := "cancelled by user"
	if payment.TransactionID != nil {
		adapter, ok := o.registry.Get(payment.PaymentMethod)
		if !ok {
			return nil, &customErr.ConfigurationError{GatewayCode: payment.PaymentMethod, Missing: "adapter"}
		}

		cancelCtx, cancel := context.WithTimeout(ctx, cancelTimeout)
		defer cancel()

		resp, err := adapter.Cancel(cancelCtx, *payment.TransactionID)
		if err != nil {
			return nil, err
		}
		if resp.Reason != "" {
			reason = resp.Reason
		}
	}

	var cancelled *model.Payment
	err = o.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := o.paymentRepo.GetByIDForUpdate(txCtx, paymentID)
		if err != nil {
			return err
		}
		if locked == nil {
			return customErr.NewPaymentNotFoundError(paymentID.String())
		}
		if locked.Status != model.PaymentStatusPending {
			return customErr.NewInvalidTransitionError(locked.ID, locked.Status, model.PaymentStatusFailed)
		}

		locked.Status = model.PaymentStatusFailed
		locked.GatewayResponse = locked.GatewayResponse.Merge(model.JSONB{
			"cancel_reason": reason,
		})
		if err := o.paymentRepo.Update(txCtx, locked); err != nil {
			return err
		}
		cancelled = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("Payment cancelled",
		zap.String("payment_id", cancelled.ID.String()),
		zap.String("reason", reason))

	return cancelled, nil
}

// GetPayment returns one payment by id
func (o *PaymentOrchestrator) GetPayment(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := o.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, customErr.NewPaymentNotFoundError(paymentID.String())
	}
	return payment, nil
}

// ListUserPayments returns a user's payments, newest first
func (o *PaymentOrchestrator) ListUserPayments(ctx context.Context, userID int64, limit int) ([]*model.Payment, error) {
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	return o.paymentRepo.ListByUser(ctx, userID, limit)
}

// finalizeInitiate records the outcome of the provider initiate call. The
// payment is re-read under a row lock because a webhook can land while the
// initiate call is still in flight; a payment that already left pending keeps
// its reconciled state and only absorbs the provider transaction id.
func (o *PaymentOrchestrator) finalizeInitiate(ctx context.Context, paymentID uuid.UUID, status model.PaymentStatus, providerTransactionID string, extra model.JSONB) (*model.Payment, error) {
	var finalized *model.Payment
	err := o.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := o.paymentRepo.GetByIDForUpdate(txCtx, paymentID)
		if err != nil {
			return err
		}
		if locked == nil {
			return customErr.NewPaymentNotFoundError(paymentID.String())
		}

		if locked.Status != model.PaymentStatusPending {
			o.logger.Info("Payment already reconciled before initiation finished",
				zap.String("payment_id", locked.ID.String()),
				zap.String("status", string(locked.Status)))
			if locked.TransactionID == nil && providerTransactionID != "" {
				txID := providerTransactionID
				locked.TransactionID = &txID
				if err := o.paymentRepo.Update(txCtx, locked); err != nil {
					return err
				}
			}
			finalized = locked
			return nil
		}

		if locked.Status.CanTransitionTo(status) || status == model.PaymentStatusPending {
			locked.Status = status
		}
		if locked.TransactionID == nil && providerTransactionID != "" {
			txID := providerTransactionID
			locked.TransactionID = &txID
		}
		locked.GatewayResponse = locked.GatewayResponse.Merge(extra)

		if err := o.paymentRepo.Update(txCtx, locked); err != nil {
			return err
		}
		finalized = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// resolvePaymentForUpdate locates the payment a webhook refers to, locking
// the row. Correlation prefers the internal payment id tagged into provider
// metadata and falls back to the provider transaction id.
func (o *PaymentOrchestrator) resolvePaymentForUpdate(ctx context.Context, result *provider.WebhookResult) (*model.Payment, error) {
	if result.PaymentID != nil {
		payment, err := o.paymentRepo.GetByIDForUpdate(ctx, *result.PaymentID)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}

	if result.ProviderTransactionID != "" {
		payment, err := o.paymentRepo.GetByTransactionIDForUpdate(ctx, result.ProviderTransactionID)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}

	ref := result.ProviderTransactionID
	if ref == "" && result.PaymentID != nil {
		ref = result.PaymentID.String()
	}
	return nil, customErr.NewPaymentNotFoundError(ref)
}

// settle runs the completion side effects inside the caller's transaction:
// record the commission and credit the payee with the net amount. The
// commission row's uniqueness per payment makes the whole block exactly-once.
func (o *PaymentOrchestrator) settle(ctx context.Context, payment *model.Payment) error {
	existing, err := o.commissionRepo.GetByPaymentID(ctx, payment.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	commissionAmount := payment.Amount.Mul(o.commissionRate).Round(2)
	commission := &model.Commission{
		PaymentID: payment.ID,
		Rate:      o.commissionRate,
		Amount:    commissionAmount,
		Type:      "percentage",
	}
	if err := o.commissionRepo.Create(ctx, commission); err != nil {
		return err
	}

	payeeID, payeeType, ok := payeeFromPayment(payment)
	if !ok {
		o.logger.Warn("Payment has no payee recorded, skipping credit",
			zap.String("payment_id", payment.ID.String()))
		return nil
	}

	net := payment.Amount.Sub(commissionAmount)
	refID := payment.ID.String()
	_, err = o.walletRepo.Credit(ctx, payeeID, payeeType, net, "payment", &refID, model.JSONB{
		"payment_id": payment.ID.String(),
		"commission": commissionAmount.String(),
	})
	if err != nil {
		return err
	}

	o.logger.Info("Payment settled",
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("payee_id", payeeID),
		zap.String("net", net.String()),
		zap.String("commission", commissionAmount.String()))

	return nil
}

// auditEvent stores the verified webhook delivery. Failure to audit is logged
// but never blocks reconciliation.
func (o *PaymentOrchestrator) auditEvent(ctx context.Context, gatewayCode string, event *provider.Event) {
	record := &model.WebhookEvent{
		GatewayCode:     gatewayCode,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.EventType,
		Status:          model.WebhookEventPending,
		Payload:         model.JSONB(event.Data),
	}
	if err := o.webhookEventRepo.SaveEvent(ctx, record); err != nil {
		o.logger.Error("Failed to audit webhook event",
			zap.String("event_id", event.ProviderEventID),
			zap.Error(err))
	}
}

func (o *PaymentOrchestrator) markEventFailed(ctx context.Context, providerEventID string, cause error) {
	if err := o.webhookEventRepo.MarkFailed(ctx, providerEventID, cause); err != nil {
		o.logger.Error("Failed to mark webhook event failed",
			zap.String("event_id", providerEventID),
			zap.Error(err))
	}
}

// payeeFromPayment reads the payee recorded at creation time out of the
// payment's internal metadata. JSON round-trips numbers as float64.
func payeeFromPayment(payment *model.Payment) (int64, string, bool) {
	if payment.GatewayResponse == nil {
		return 0, "", false
	}

	var payeeID int64
	switch v := payment.GatewayResponse["payee_id"].(type) {
	case float64:
		payeeID = int64(v)
	case int64:
		payeeID = v
	case int:
		payeeID = int64(v)
	default:
		return 0, "", false
	}

	payeeType, _ := payment.GatewayResponse["payee_type"].(string)
	if payeeType == "" {
		payeeType = "designer"
	}

	return payeeID, payeeType, true
}
