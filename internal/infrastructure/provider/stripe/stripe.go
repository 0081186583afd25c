package stripe

import (
	"context"
	"encoding/json"
	"net/http"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

const gatewayCode = "stripe"

// Adapter implements the provider.Adapter interface on top of the Stripe SDK
type Adapter struct {
	secretKey     string
	webhookSecret string
	logger        *zap.Logger
}

// NewAdapter creates a new Stripe adapter
func NewAdapter(secretKey, webhookSecret string, logger *zap.Logger) *Adapter {
	if secretKey != "" {
		stripeapi.Key = secretKey
	}
	return &Adapter{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// Code returns the gateway code the adapter serves
func (a *Adapter) Code() string {
	return gatewayCode
}

// Ready reports whether the adapter has usable credentials
func (a *Adapter) Ready() error {
	if a.secretKey == "" {
		return &customErr.ConfigurationError{GatewayCode: gatewayCode, Missing: "secret_key"}
	}
	return nil
}

// Initiate creates a payment intent tagged with the internal payment id
func (a *Adapter) Initiate(ctx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
	params := &stripeapi.PaymentIntentParams{
		Params: stripeapi.Params{
			Context: ctx,
		},
		Amount:      stripeapi.Int64(minorUnits(req.Amount)),
		Currency:    stripeapi.String(req.Currency),
		Description: stripeapi.String(req.Description),
	}
	params.AddMetadata("payment_id", req.PaymentID.String())
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripeapi.String(req.Customer.Email)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		a.logger.Error("Stripe payment intent creation failed",
			zap.String("payment_id", req.PaymentID.String()),
			zap.Error(err))
		return nil, wrapStripeError(err)
	}

	a.logger.Info("Stripe payment intent created",
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)))

	return &provider.InitiateResponse{
		Status:                mapIntentStatus(pi.Status),
		ProviderTransactionID: pi.ID,
		ClientSecret:          pi.ClientSecret,
		Raw:                   rawIntent(pi),
	}, nil
}

// GetStatus fetches the payment intent and normalizes its status
func (a *Adapter) GetStatus(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error) {
	params := &stripeapi.PaymentIntentParams{
		Params: stripeapi.Params{Context: ctx},
	}

	pi, err := paymentintent.Get(providerTransactionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return &provider.StatusResponse{
		Status: mapIntentStatus(pi.Status),
		Raw:    rawIntent(pi),
	}, nil
}

// Cancel voids a payment intent. A terminal intent cannot be canceled; that
// case is reported as a failed cancellation, not as an error.
func (a *Adapter) Cancel(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error) {
	params := &stripeapi.PaymentIntentCancelParams{
		Params: stripeapi.Params{Context: ctx},
	}

	pi, err := paymentintent.Cancel(providerTransactionID, params)
	if err != nil {
		a.logger.Warn("Stripe cancellation refused",
			zap.String("payment_intent_id", providerTransactionID),
			zap.Error(err))
		return &provider.StatusResponse{
			Status: model.PaymentStatusFailed,
			Reason: err.Error(),
		}, nil
	}

	return &provider.StatusResponse{
		Status: model.PaymentStatusFailed,
		Reason: "canceled by merchant",
		Raw:    rawIntent(pi),
	}, nil
}

// VerifyWebhook checks the Stripe-Signature header on a raw delivery
func (a *Adapter) VerifyWebhook(payload []byte, signature string, _ http.Header) (*provider.Event, error) {
	if a.webhookSecret == "" {
		return nil, &customErr.ConfigurationError{GatewayCode: gatewayCode, Missing: "webhook_secret"}
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, a.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &customErr.VerificationError{GatewayCode: gatewayCode, Reason: err.Error()}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
		return nil, &customErr.VerificationError{GatewayCode: gatewayCode, Reason: "malformed event payload"}
	}

	return &provider.Event{
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		Payload:         payload,
		Data:            data,
	}, nil
}

// ParseWebhook extracts the normalized reconciliation fields from an event
func (a *Adapter) ParseWebhook(event *provider.Event) (*provider.WebhookResult, error) {
	result := &provider.WebhookResult{
		EventType: event.EventType,
		Status:    mapEventType(event.EventType),
		Raw:       event.Data,
	}

	if id, ok := event.Data["id"].(string); ok {
		result.ProviderTransactionID = id
	}
	if event.EventType == "charge.refunded" {
		// refund events carry the intent reference, not the intent itself
		if piID, ok := event.Data["payment_intent"].(string); ok {
			result.ProviderTransactionID = piID
		}
	}

	if metadata, ok := event.Data["metadata"].(map[string]interface{}); ok {
		if raw, ok := metadata["payment_id"].(string); ok {
			if id, err := uuid.Parse(raw); err == nil {
				result.PaymentID = &id
			} else {
				a.logger.Warn("Stripe webhook carries unparsable payment_id metadata",
					zap.String("payment_id", raw))
			}
		}
	}

	return result, nil
}

// mapIntentStatus is the Stripe payment intent -> normalized status table
func mapIntentStatus(status stripeapi.PaymentIntentStatus) model.PaymentStatus {
	switch status {
	case stripeapi.PaymentIntentStatusSucceeded:
		return model.PaymentStatusCompleted
	case stripeapi.PaymentIntentStatusCanceled:
		return model.PaymentStatusFailed
	default:
		// requires_payment_method, requires_confirmation, requires_action,
		// requires_capture, processing
		return model.PaymentStatusPending
	}
}

// mapEventType is the Stripe webhook event -> normalized status table
func mapEventType(eventType string) model.PaymentStatus {
	switch eventType {
	case "payment_intent.succeeded":
		return model.PaymentStatusCompleted
	case "payment_intent.payment_failed", "payment_intent.canceled":
		return model.PaymentStatusFailed
	case "charge.refunded":
		return model.PaymentStatusRefunded
	default:
		return model.PaymentStatusPending
	}
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func rawIntent(pi *stripeapi.PaymentIntent) map[string]interface{} {
	return map[string]interface{}{
		"id":     pi.ID,
		"status": string(pi.Status),
		"amount": pi.Amount,
	}
}

func wrapStripeError(err error) error {
	if stripeErr, ok := err.(*stripeapi.Error); ok {
		return &provider.Error{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
			Details: stripeErr.RequestID,
		}
	}
	return &provider.Error{
		Code:    "STRIPE_ERROR",
		Message: err.Error(),
	}
}
