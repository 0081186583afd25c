package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/google/uuid"
)

// Adapter is an in-memory provider used by tests and sandbox gateways.
// Default behavior is a happy path; the function hooks override individual
// operations per test.
type Adapter struct {
	GatewayCode string
	ReadyErr    error

	InitiateFunc      func(ctx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error)
	GetStatusFunc     func(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error)
	CancelFunc        func(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error)
	VerifyWebhookFunc func(payload []byte, signature string, headers http.Header) (*provider.Event, error)
	ParseWebhookFunc  func(event *provider.Event) (*provider.WebhookResult, error)

	mu        sync.Mutex
	initiated []uuid.UUID
}

// NewAdapter creates a mock adapter for the given gateway code
func NewAdapter(code string) *Adapter {
	return &Adapter{GatewayCode: code}
}

func (a *Adapter) Code() string {
	return a.GatewayCode
}

func (a *Adapter) Ready() error {
	return a.ReadyErr
}

// Initiated returns the payment ids passed to Initiate, in call order
func (a *Adapter) Initiated() []uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uuid.UUID(nil), a.initiated...)
}

func (a *Adapter) Initiate(ctx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
	a.mu.Lock()
	a.initiated = append(a.initiated, req.PaymentID)
	a.mu.Unlock()

	if a.InitiateFunc != nil {
		return a.InitiateFunc(ctx, req)
	}
	return &provider.InitiateResponse{
		Status:                model.PaymentStatusPending,
		ProviderTransactionID: "mock_" + req.PaymentID.String(),
		PaymentURL:            "https://pay.example.com/" + req.PaymentID.String(),
		Raw:                   map[string]interface{}{"mock": true},
	}, nil
}

func (a *Adapter) GetStatus(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error) {
	if a.GetStatusFunc != nil {
		return a.GetStatusFunc(ctx, providerTransactionID)
	}
	return &provider.StatusResponse{Status: model.PaymentStatusPending}, nil
}

func (a *Adapter) Cancel(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error) {
	if a.CancelFunc != nil {
		return a.CancelFunc(ctx, providerTransactionID)
	}
	return &provider.StatusResponse{
		Status: model.PaymentStatusFailed,
		Reason: "canceled by merchant",
	}, nil
}

// VerifyWebhook accepts any payload signed with the literal signature "valid"
func (a *Adapter) VerifyWebhook(payload []byte, signature string, headers http.Header) (*provider.Event, error) {
	if a.VerifyWebhookFunc != nil {
		return a.VerifyWebhookFunc(payload, signature, headers)
	}

	if signature != "valid" {
		return nil, &customErr.VerificationError{GatewayCode: a.GatewayCode, Reason: "signature mismatch"}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &customErr.VerificationError{GatewayCode: a.GatewayCode, Reason: "malformed payload"}
	}

	eventID, _ := data["event_id"].(string)
	if eventID == "" {
		eventID = fmt.Sprintf("mock_evt_%s", uuid.NewString())
	}
	eventType, _ := data["event_type"].(string)

	return &provider.Event{
		ProviderEventID: eventID,
		EventType:       eventType,
		Payload:         payload,
		Data:            data,
	}, nil
}

func (a *Adapter) ParseWebhook(event *provider.Event) (*provider.WebhookResult, error) {
	if a.ParseWebhookFunc != nil {
		return a.ParseWebhookFunc(event)
	}

	result := &provider.WebhookResult{
		EventType: event.EventType,
		Status:    model.PaymentStatus(stringField(event.Data, "status")),
		Raw:       event.Data,
	}
	result.ProviderTransactionID = stringField(event.Data, "transaction_id")

	if raw := stringField(event.Data, "payment_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			result.PaymentID = &id
		}
	}

	return result, nil
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
