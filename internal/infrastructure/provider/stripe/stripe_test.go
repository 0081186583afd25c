package stripe

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeapi "github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
)

func TestMapIntentStatus(t *testing.T) {
	tests := []struct {
		status stripeapi.PaymentIntentStatus
		want   model.PaymentStatus
	}{
		{stripeapi.PaymentIntentStatusSucceeded, model.PaymentStatusCompleted},
		{stripeapi.PaymentIntentStatusCanceled, model.PaymentStatusFailed},
		{stripeapi.PaymentIntentStatusProcessing, model.PaymentStatusPending},
		{stripeapi.PaymentIntentStatusRequiresPaymentMethod, model.PaymentStatusPending},
		{stripeapi.PaymentIntentStatusRequiresConfirmation, model.PaymentStatusPending},
		{stripeapi.PaymentIntentStatusRequiresAction, model.PaymentStatusPending},
		{stripeapi.PaymentIntentStatusRequiresCapture, model.PaymentStatusPending},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapIntentStatus(tt.status), "status %s", tt.status)
	}
}

func TestMapEventType(t *testing.T) {
	tests := []struct {
		eventType string
		want      model.PaymentStatus
	}{
		{"payment_intent.succeeded", model.PaymentStatusCompleted},
		{"payment_intent.payment_failed", model.PaymentStatusFailed},
		{"payment_intent.canceled", model.PaymentStatusFailed},
		{"charge.refunded", model.PaymentStatusRefunded},
		{"payment_intent.created", model.PaymentStatusPending},
		{"customer.updated", model.PaymentStatusPending},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapEventType(tt.eventType), "event %s", tt.eventType)
	}
}

func TestMinorUnits(t *testing.T) {
	assert.EqualValues(t, 1050, minorUnits(decimal.NewFromFloat(10.50)))
	assert.EqualValues(t, 100, minorUnits(decimal.NewFromInt(1)))
	assert.EqualValues(t, 1, minorUnits(decimal.NewFromFloat(0.01)))
}

func TestReadyWithoutSecretKey(t *testing.T) {
	adapter := NewAdapter("", "whsec_test", zap.NewNop())

	err := adapter.Ready()
	var config *customErr.ConfigurationError
	require.ErrorAs(t, err, &config)
	assert.Equal(t, "stripe", config.GatewayCode)
}

func TestVerifyWebhookWithoutSecretIsConfigurationError(t *testing.T) {
	adapter := NewAdapter("sk_test", "", zap.NewNop())

	_, err := adapter.VerifyWebhook([]byte(`{}`), "sig", nil)
	var config *customErr.ConfigurationError
	require.ErrorAs(t, err, &config)
}

func TestVerifyWebhookBadSignature(t *testing.T) {
	adapter := NewAdapter("sk_test", "whsec_test", zap.NewNop())

	_, err := adapter.VerifyWebhook([]byte(`{"id":"evt_1"}`), "t=1,v1=bogus", nil)
	var verification *customErr.VerificationError
	require.ErrorAs(t, err, &verification)
}

func TestParseWebhookExtractsPaymentMetadata(t *testing.T) {
	adapter := NewAdapter("sk_test", "whsec_test", zap.NewNop())

	event := &provider.Event{
		ProviderEventID: "evt_1",
		EventType:       "payment_intent.succeeded",
		Data: map[string]interface{}{
			"id": "pi_123",
			"metadata": map[string]interface{}{
				"payment_id": "7f6c2f6a-9452-4a76-9c6b-24e6df3e43a1",
			},
		},
	}

	result, err := adapter.ParseWebhook(event)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, result.Status)
	assert.Equal(t, "pi_123", result.ProviderTransactionID)
	require.NotNil(t, result.PaymentID)
	assert.Equal(t, "7f6c2f6a-9452-4a76-9c6b-24e6df3e43a1", result.PaymentID.String())
}

func TestParseWebhookRefundUsesIntentReference(t *testing.T) {
	adapter := NewAdapter("sk_test", "whsec_test", zap.NewNop())

	event := &provider.Event{
		ProviderEventID: "evt_2",
		EventType:       "charge.refunded",
		Data: map[string]interface{}{
			"id":             "ch_123",
			"payment_intent": "pi_123",
		},
	}

	result, err := adapter.ParseWebhook(event)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, result.Status)
	assert.Equal(t, "pi_123", result.ProviderTransactionID)
	assert.Nil(t, result.PaymentID)
}

func TestParseWebhookUnparsablePaymentIDIgnored(t *testing.T) {
	adapter := NewAdapter("sk_test", "whsec_test", zap.NewNop())

	event := &provider.Event{
		EventType: "payment_intent.succeeded",
		Data: map[string]interface{}{
			"id": "pi_123",
			"metadata": map[string]interface{}{
				"payment_id": "not-a-uuid",
			},
		},
	}

	result, err := adapter.ParseWebhook(event)
	require.NoError(t, err)
	assert.Nil(t, result.PaymentID)
	assert.Equal(t, "pi_123", result.ProviderTransactionID)
}
