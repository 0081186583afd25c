package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	customErr "github.com/designmart/payment-service/internal/domain/errors"
	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/designmart/payment-service/internal/domain/provider"
	"github.com/designmart/payment-service/internal/infrastructure/database"
	"github.com/designmart/payment-service/internal/infrastructure/database/testdb"
	"github.com/designmart/payment-service/internal/infrastructure/notify"
	"github.com/designmart/payment-service/internal/infrastructure/provider/mock"
)

type stubNotifier struct{}

func (stubNotifier) Notify(ctx context.Context, payload map[string]interface{}) error {
	return nil
}

type orchestratorFixture struct {
	db           *gorm.DB
	adapter      *mock.Adapter
	orchestrator *PaymentOrchestrator
	repos        *database.Repositories
}

func newOrchestratorFixture(t *testing.T, adapters ...provider.Adapter) *orchestratorFixture {
	t.Helper()

	db, err := testdb.New()
	require.NoError(t, err)

	var mockAdapter *mock.Adapter
	if len(adapters) == 0 {
		mockAdapter = mock.NewAdapter("mockpay")
		adapters = []provider.Adapter{mockAdapter}
		require.NoError(t, db.Create(&model.Gateway{Code: "mockpay", Name: "Mock Pay", IsActive: true}).Error)
	}

	registry, err := provider.NewRegistry(adapters...)
	require.NoError(t, err)

	logger := zap.NewNop()
	repos := database.NewRepositories(db, logger)
	selector := NewGatewaySelector(repos.Gateway, registry, logger)
	queue := notify.NewRetryQueue(stubNotifier{}, 3, time.Second, logger)

	orchestrator := NewPaymentOrchestrator(
		selector,
		registry,
		repos.Payment,
		repos.Commission,
		repos.Wallet,
		repos.WebhookEvent,
		repos.Tx,
		queue,
		0.10,
		logger,
	)

	return &orchestratorFixture{
		db:           db,
		adapter:      mockAdapter,
		orchestrator: orchestrator,
		repos:        repos,
	}
}

func (f *orchestratorFixture) createPayment(t *testing.T) *ProcessPaymentResult {
	t.Helper()
	result, err := f.orchestrator.ProcessPayment(context.Background(), &ProcessPaymentRequest{
		UserID:            1,
		PayeeID:           77,
		PayeeType:         "designer",
		Amount:            decimal.NewFromInt(100),
		Currency:          "USD",
		PreferredGateways: []string{"mockpay"},
	})
	require.NoError(t, err)
	return result
}

func (f *orchestratorFixture) webhookPayload(t *testing.T, eventID string, fields map[string]interface{}) []byte {
	t.Helper()
	data := map[string]interface{}{"event_id": eventID}
	for k, v := range fields {
		data[k] = v
	}
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	return payload
}

func TestProcessPaymentHappyPath(t *testing.T) {
	f := newOrchestratorFixture(t)

	result := f.createPayment(t)

	assert.Equal(t, "mockpay", result.GatewayCode)
	assert.NotEmpty(t, result.ProviderTransactionID)
	assert.Equal(t, model.PaymentStatusPending, result.Payment.Status)

	stored, err := f.repos.Payment.GetByID(context.Background(), result.Payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.TransactionID)
	assert.Equal(t, result.ProviderTransactionID, *stored.TransactionID)
	assert.EqualValues(t, 77, stored.GatewayResponse["payee_id"])
}

func TestProcessPaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.orchestrator.ProcessPayment(context.Background(), &ProcessPaymentRequest{
		UserID:  1,
		PayeeID: 77,
		Amount:  decimal.Zero,
	})
	var invalid *customErr.InvalidAmountError
	require.ErrorAs(t, err, &invalid)
}

func TestProcessPaymentNoGatewayAvailable(t *testing.T) {
	broken := mock.NewAdapter("mockpay")
	broken.ReadyErr = &customErr.ConfigurationError{GatewayCode: "mockpay", Missing: "api_key"}

	f := newOrchestratorFixture(t, broken)
	require.NoError(t, f.db.Create(&model.Gateway{Code: "mockpay", Name: "Mock Pay", IsActive: true}).Error)

	_, err := f.orchestrator.ProcessPayment(context.Background(), &ProcessPaymentRequest{
		UserID:            1,
		PayeeID:           77,
		Amount:            decimal.NewFromInt(100),
		Currency:          "USD",
		PreferredGateways: []string{"mockpay"},
	})

	var unavailable *customErr.GatewayUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// No payment row may exist when selection fails
	var count int64
	require.NoError(t, f.db.Model(&model.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProcessPaymentInitiateFailureMarksPaymentFailed(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.adapter.InitiateFunc = func(ctx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
		return nil, &provider.Error{Code: "card_declined", Message: "card declined"}
	}

	_, err := f.orchestrator.ProcessPayment(context.Background(), &ProcessPaymentRequest{
		UserID:            1,
		PayeeID:           77,
		Amount:            decimal.NewFromInt(100),
		Currency:          "USD",
		PreferredGateways: []string{"mockpay"},
	})
	require.Error(t, err)

	// The pending row flipped to failed with the provider error recorded
	var payments []*model.Payment
	require.NoError(t, f.db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, model.PaymentStatusFailed, payments[0].Status)
	assert.Contains(t, payments[0].GatewayResponse, "initiate_error")
}

func TestProcessPaymentWebhookDuringInitiateKeepsReconciledStatus(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	// The provider delivers the completion webhook while the initiate call is
	// still in flight. The late initiate result must not drag the payment back
	// to pending.
	f.adapter.InitiateFunc = func(initCtx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
		payload := f.webhookPayload(t, "evt_race", map[string]interface{}{
			"event_type": "payment.completed",
			"status":     "completed",
			"payment_id": req.PaymentID.String(),
		})
		outcome, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", payload, "valid", nil)
		require.NoError(t, err)
		require.True(t, outcome.Applied)

		return &provider.InitiateResponse{
			Status:                model.PaymentStatusPending,
			ProviderTransactionID: "tx_race",
			Raw:                   map[string]interface{}{"mock": true},
		}, nil
	}

	result := f.createPayment(t)
	assert.Equal(t, model.PaymentStatusCompleted, result.Payment.Status)

	stored, err := f.repos.Payment.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, stored.Status)
	require.NotNil(t, stored.TransactionID)
	assert.Equal(t, "tx_race", *stored.TransactionID)

	// Settlement from the webhook survives untouched
	commission, err := f.repos.Commission.GetByPaymentID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, commission)

	wallet, err := f.repos.Wallet.GetWallet(ctx, 77, "designer")
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(90)))
}

func TestProcessPaymentInitiateFailureLosesToConcurrentCompletion(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	f.adapter.InitiateFunc = func(initCtx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
		payload := f.webhookPayload(t, "evt_race", map[string]interface{}{
			"event_type": "payment.completed",
			"status":     "completed",
			"payment_id": req.PaymentID.String(),
		})
		_, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", payload, "valid", nil)
		require.NoError(t, err)

		return nil, &provider.Error{Code: "timeout", Message: "gateway timeout"}
	}

	_, err := f.orchestrator.ProcessPayment(ctx, &ProcessPaymentRequest{
		UserID:            1,
		PayeeID:           77,
		Amount:            decimal.NewFromInt(100),
		Currency:          "USD",
		PreferredGateways: []string{"mockpay"},
	})
	require.Error(t, err)

	// The completion recorded by the webhook wins over the late failure
	var payments []*model.Payment
	require.NoError(t, f.db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, model.PaymentStatusCompleted, payments[0].Status)
	assert.NotContains(t, payments[0].GatewayResponse, "initiate_error")
}

func TestProcessWebhookCompletesPaymentAndSettles(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)
	ctx := context.Background()

	payload := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type":     "payment.completed",
		"status":         "completed",
		"payment_id":     result.Payment.ID.String(),
		"transaction_id": result.ProviderTransactionID,
	})

	outcome, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", payload, "valid", nil)
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, model.PaymentStatusCompleted, outcome.Status)

	payment, err := f.repos.Payment.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, payment.Status)

	// Commission is 10% of 100
	commission, err := f.repos.Commission.GetByPaymentID(ctx, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, commission)
	assert.True(t, commission.Amount.Equal(decimal.NewFromInt(10)))

	// Payee receives the net amount
	wallet, err := f.repos.Wallet.GetWallet(ctx, 77, "designer")
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(90)))

	// Audit record marked processed
	event, err := f.repos.WebhookEvent.GetEvent(ctx, "evt_1")
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, model.WebhookEventCompleted, event.Status)
}

func TestProcessWebhookReplayHasNoDoubleEffect(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)
	ctx := context.Background()

	payload := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type":     "payment.completed",
		"status":         "completed",
		"payment_id":     result.Payment.ID.String(),
		"transaction_id": result.ProviderTransactionID,
	})

	first, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", payload, "valid", nil)
	require.NoError(t, err)
	assert.True(t, first.Applied)

	// Same delivery again, then once more with a different event id
	replay, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", payload, "valid", nil)
	require.NoError(t, err)
	assert.False(t, replay.Applied)

	payload2 := f.webhookPayload(t, "evt_2", map[string]interface{}{
		"event_type":     "payment.completed",
		"status":         "completed",
		"payment_id":     result.Payment.ID.String(),
		"transaction_id": result.ProviderTransactionID,
	})
	_, err = f.orchestrator.ProcessWebhook(ctx, "mockpay", payload2, "valid", nil)
	require.NoError(t, err)

	// Exactly one commission and one ledger entry
	var commissionCount int64
	require.NoError(t, f.db.Model(&model.Commission{}).Count(&commissionCount).Error)
	assert.EqualValues(t, 1, commissionCount)

	wallet, err := f.repos.Wallet.GetWallet(ctx, 77, "designer")
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(90)))

	entries, err := f.repos.Wallet.GetTransactions(ctx, wallet.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessWebhookInvalidSignatureChangesNothing(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)
	ctx := context.Background()

	payload := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type": "payment.completed",
		"status":     "completed",
		"payment_id": result.Payment.ID.String(),
	})

	_, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", payload, "forged", nil)
	var verification *customErr.VerificationError
	require.ErrorAs(t, err, &verification)

	payment, err := f.repos.Payment.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)

	// Rejected deliveries are never audited
	event, err := f.repos.WebhookEvent.GetEvent(ctx, "evt_1")
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestProcessWebhookUnknownPayment(t *testing.T) {
	f := newOrchestratorFixture(t)

	payload := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type":     "payment.completed",
		"status":         "completed",
		"payment_id":     uuid.NewString(),
		"transaction_id": "tx_unknown",
	})

	_, err := f.orchestrator.ProcessWebhook(context.Background(), "mockpay", payload, "valid", nil)
	var notFound *customErr.PaymentNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestProcessWebhookConflictingTerminalRejected(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)
	ctx := context.Background()

	failed := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type": "payment.failed",
		"status":     "failed",
		"payment_id": result.Payment.ID.String(),
	})
	_, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", failed, "valid", nil)
	require.NoError(t, err)

	// A contradicting terminal status must be rejected, not applied
	completed := f.webhookPayload(t, "evt_2", map[string]interface{}{
		"event_type": "payment.completed",
		"status":     "completed",
		"payment_id": result.Payment.ID.String(),
	})
	_, err = f.orchestrator.ProcessWebhook(ctx, "mockpay", completed, "valid", nil)
	var transition *customErr.InvalidTransitionError
	require.ErrorAs(t, err, &transition)

	payment, err := f.repos.Payment.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, payment.Status)

	// No settlement side effects for the rejected transition
	commission, err := f.repos.Commission.GetByPaymentID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Nil(t, commission)
}

func TestProcessWebhookRefundAfterCompletion(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)
	ctx := context.Background()

	completed := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type": "payment.completed",
		"status":     "completed",
		"payment_id": result.Payment.ID.String(),
	})
	_, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", completed, "valid", nil)
	require.NoError(t, err)

	refunded := f.webhookPayload(t, "evt_2", map[string]interface{}{
		"event_type": "charge.refunded",
		"status":     "refunded",
		"payment_id": result.Payment.ID.String(),
	})
	outcome, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", refunded, "valid", nil)
	require.NoError(t, err)
	assert.True(t, outcome.Applied)

	payment, err := f.repos.Payment.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, payment.Status)
}

func TestProcessWebhookOutOfOrderRefundRejected(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)

	refunded := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type": "charge.refunded",
		"status":     "refunded",
		"payment_id": result.Payment.ID.String(),
	})
	_, err := f.orchestrator.ProcessWebhook(context.Background(), "mockpay", refunded, "valid", nil)
	var transition *customErr.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
}

func TestCancelPendingPayment(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)

	cancelled, err := f.orchestrator.CancelPayment(context.Background(), result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, cancelled.Status)
	assert.Contains(t, cancelled.GatewayResponse, "cancel_reason")
}

func TestCancelCompletedPaymentRejected(t *testing.T) {
	f := newOrchestratorFixture(t)
	result := f.createPayment(t)
	ctx := context.Background()

	completed := f.webhookPayload(t, "evt_1", map[string]interface{}{
		"event_type": "payment.completed",
		"status":     "completed",
		"payment_id": result.Payment.ID.String(),
	})
	_, err := f.orchestrator.ProcessWebhook(ctx, "mockpay", completed, "valid", nil)
	require.NoError(t, err)

	_, err = f.orchestrator.CancelPayment(ctx, result.Payment.ID)
	var transition *customErr.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
}

func TestCancelUnknownPayment(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.orchestrator.CancelPayment(context.Background(), uuid.New())
	var notFound *customErr.PaymentNotFoundError
	require.ErrorAs(t, err, &notFound)
}
