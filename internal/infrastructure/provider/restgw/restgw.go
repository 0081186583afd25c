package restgw

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/designmart/payment-service/internal/config"
	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Adapter is a generic HTTP-templated provider implementation. REST-style
// gateways that differ only in endpoints, auth header and status vocabulary
// share this one adapter, parameterized per gateway by config.
type Adapter struct {
	cfg    config.RestGatewayConfig
	client *http.Client
	logger *zap.Logger
}

// NewAdapter creates an adapter for one configured REST gateway
func NewAdapter(cfg config.RestGatewayConfig, logger *zap.Logger) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Code returns the gateway code the adapter serves
func (a *Adapter) Code() string {
	return a.cfg.Code
}

// Ready reports whether the adapter has usable credentials
func (a *Adapter) Ready() error {
	if a.cfg.APIKey == "" {
		return &customErr.ConfigurationError{GatewayCode: a.cfg.Code, Missing: "api_key"}
	}
	if a.cfg.BaseURL == "" {
		return &customErr.ConfigurationError{GatewayCode: a.cfg.Code, Missing: "base_url"}
	}
	return nil
}

// Initiate posts a payment creation request to the gateway
func (a *Adapter) Initiate(ctx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
	metadata := map[string]string{"payment_id": req.PaymentID.String()}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	body := map[string]interface{}{
		"amount":      req.Amount.String(),
		"currency":    req.Currency,
		"description": req.Description,
		"reference":   req.PaymentID.String(),
		"customer": map[string]string{
			"id":    req.Customer.ID,
			"email": req.Customer.Email,
			"name":  req.Customer.Name,
		},
		"metadata": metadata,
	}
	if req.ReturnURL != "" {
		body["return_url"] = req.ReturnURL
	}
	if req.CancelURL != "" {
		body["cancel_url"] = req.CancelURL
	}

	resp, err := a.post(ctx, a.cfg.InitiatePath, body)
	if err != nil {
		return nil, err
	}

	result := &provider.InitiateResponse{
		Status:                a.mapStatus(stringField(resp, "status")),
		ProviderTransactionID: stringField(resp, "id"),
		PaymentURL:            stringField(resp, "payment_url"),
		Raw:                   resp,
	}

	a.logger.Info("Gateway payment initiated",
		zap.String("gateway", a.cfg.Code),
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("provider_transaction_id", result.ProviderTransactionID),
		zap.String("status", string(result.Status)))

	return result, nil
}

// GetStatus fetches the current provider-side status of a transaction
func (a *Adapter) GetStatus(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error) {
	path := strings.ReplaceAll(a.cfg.StatusPath, "{id}", providerTransactionID)

	resp, err := a.get(ctx, path)
	if err != nil {
		return nil, err
	}

	return &provider.StatusResponse{
		Status: a.mapStatus(stringField(resp, "status")),
		Raw:    resp,
	}, nil
}

// Cancel voids a transaction. Gateways without a cancel endpoint report a
// failed cancellation with a reason instead of erroring.
func (a *Adapter) Cancel(ctx context.Context, providerTransactionID string) (*provider.StatusResponse, error) {
	if !a.cfg.CanCancel {
		return &provider.StatusResponse{
			Status: model.PaymentStatusFailed,
			Reason: fmt.Sprintf("gateway %s does not support cancellation", a.cfg.Code),
		}, nil
	}

	path := strings.ReplaceAll(a.cfg.CancelPath, "{id}", providerTransactionID)

	resp, err := a.post(ctx, path, map[string]interface{}{})
	if err != nil {
		return &provider.StatusResponse{
			Status: model.PaymentStatusFailed,
			Reason: err.Error(),
		}, nil
	}

	return &provider.StatusResponse{
		Status: model.PaymentStatusFailed,
		Reason: "canceled by merchant",
		Raw:    resp,
	}, nil
}

// VerifyWebhook checks the HMAC-SHA256 signature the gateway puts on deliveries
func (a *Adapter) VerifyWebhook(payload []byte, signature string, _ http.Header) (*provider.Event, error) {
	if a.cfg.WebhookSecret == "" {
		return nil, &customErr.ConfigurationError{GatewayCode: a.cfg.Code, Missing: "webhook_secret"}
	}

	mac := hmac.New(sha256.New, []byte(a.cfg.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return nil, &customErr.VerificationError{GatewayCode: a.cfg.Code, Reason: "signature mismatch"}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &customErr.VerificationError{GatewayCode: a.cfg.Code, Reason: "malformed payload"}
	}

	return &provider.Event{
		ProviderEventID: stringField(data, "event_id"),
		EventType:       stringField(data, "event_type"),
		Payload:         payload,
		Data:            data,
	}, nil
}

// ParseWebhook extracts the normalized reconciliation fields from an event
func (a *Adapter) ParseWebhook(event *provider.Event) (*provider.WebhookResult, error) {
	result := &provider.WebhookResult{
		EventType:             event.EventType,
		ProviderTransactionID: stringField(event.Data, "transaction_id"),
		Status:                a.mapStatus(stringField(event.Data, "status")),
		Raw:                   event.Data,
	}
	if result.ProviderTransactionID == "" {
		result.ProviderTransactionID = stringField(event.Data, "id")
	}

	if raw := stringField(event.Data, "payment_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			result.PaymentID = &id
		} else {
			a.logger.Warn("Webhook carries unparsable payment_id",
				zap.String("gateway", a.cfg.Code),
				zap.String("payment_id", raw))
		}
	}

	return result, nil
}

// mapStatus applies the gateway's configured status mapping table.
// Unknown statuses normalize to pending so no money moves on them.
func (a *Adapter) mapStatus(providerStatus string) model.PaymentStatus {
	if mapped, ok := a.cfg.StatusMap[strings.ToLower(providerStatus)]; ok {
		return model.PaymentStatus(mapped)
	}

	a.logger.Warn("Unmapped provider status",
		zap.String("gateway", a.cfg.Code),
		zap.String("provider_status", providerStatus))
	return model.PaymentStatusPending
}

func (a *Adapter) post(ctx context.Context, path string, body map[string]interface{}) (map[string]interface{}, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &provider.Error{
			Code:    "MARSHAL_ERROR",
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.Error{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return a.do(httpReq)
}

func (a *Adapter) get(ctx context.Context, path string) (map[string]interface{}, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, &provider.Error{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}

	return a.do(httpReq)
}

func (a *Adapter) do(req *http.Request) (map[string]interface{}, error) {
	authHeader := a.cfg.AuthHeader
	if authHeader == "" {
		authHeader = "Authorization"
	}
	req.Header.Set(authHeader, "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("Gateway API request failed",
			zap.String("gateway", a.cfg.Code),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return nil, &provider.Error{
			Code:    "API_ERROR",
			Message: "gateway API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.Error{
			Code:    "RESPONSE_ERROR",
			Message: "Failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.Unmarshal(respBody, &errResp)

		a.logger.Error("Gateway API returned error",
			zap.String("gateway", a.cfg.Code),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		code := stringField(errResp, "code")
		if code == "" {
			code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}

		return nil, &provider.Error{
			Code:    code,
			Message: stringField(errResp, "message"),
			Details: string(respBody),
		}
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &provider.Error{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}

	return result, nil
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
