package provider

import (
	"context"
	"net/http"

	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adapter normalizes one external payment provider into the common shape the
// orchestrator works with. Implementations are stateless beyond their
// credentials and own the provider-specific -> normalized status mapping.
type Adapter interface {
	// Code returns the gateway code the adapter serves
	Code() string

	// Ready reports whether the adapter has usable credentials.
	// A non-nil error is a configuration problem, not a runtime failure.
	Ready() error

	// Initiate starts a payment with the provider. The internal payment id is
	// tagged into the outbound metadata so webhooks can be correlated even when
	// the provider never echoes it back.
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error)

	// GetStatus fetches the current provider-side status of a transaction
	GetStatus(ctx context.Context, providerTransactionID string) (*StatusResponse, error)

	// Cancel voids a transaction. Providers that cannot cancel report a failed
	// status with a reason instead of returning an error.
	Cancel(ctx context.Context, providerTransactionID string) (*StatusResponse, error)

	// VerifyWebhook checks the provider signature on a raw webhook delivery
	VerifyWebhook(payload []byte, signature string, headers http.Header) (*Event, error)

	// ParseWebhook extracts the normalized reconciliation fields from a verified event
	ParseWebhook(event *Event) (*WebhookResult, error)
}

// InitiateRequest represents a provider-agnostic payment initialization request
type InitiateRequest struct {
	PaymentID   uuid.UUID         `json:"payment_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Customer    Customer          `json:"customer"`
	ReturnURL   string            `json:"return_url,omitempty"`
	CancelURL   string            `json:"cancel_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Customer identifies the paying user towards the provider
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// InitiateResponse represents the response from payment initialization
type InitiateResponse struct {
	Status                model.PaymentStatus    `json:"status"`
	ProviderTransactionID string                 `json:"provider_transaction_id"`
	PaymentURL            string                 `json:"payment_url,omitempty"`
	ClientSecret          string                 `json:"client_secret,omitempty"`
	Raw                   map[string]interface{} `json:"raw,omitempty"`
}

// StatusResponse represents a status lookup or cancellation result
type StatusResponse struct {
	Status model.PaymentStatus    `json:"status"`
	Reason string                 `json:"reason,omitempty"`
	Raw    map[string]interface{} `json:"raw,omitempty"`
}

// Event is a signature-verified inbound webhook delivery
type Event struct {
	ProviderEventID string                 `json:"provider_event_id"`
	EventType       string                 `json:"event_type"`
	Payload         []byte                 `json:"-"`
	Data            map[string]interface{} `json:"data"`
}

// WebhookResult carries the normalized fields reconciliation needs
type WebhookResult struct {
	EventType             string                 `json:"event_type"`
	ProviderTransactionID string                 `json:"provider_transaction_id"`
	PaymentID             *uuid.UUID             `json:"payment_id,omitempty"`
	Status                model.PaymentStatus    `json:"status"`
	Raw                   map[string]interface{} `json:"raw,omitempty"`
}

// Error types for provider operations
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
