package errors

import (
	"fmt"

	"github.com/designmart/payment-service/internal/domain/model"
	"github.com/google/uuid"
)

// GatewayUnavailableError is returned when no active, ready gateway survives
// selection. Retryable by the caller with different inputs.
type GatewayUnavailableError struct {
	Tried []string
}

func (e *GatewayUnavailableError) Error() string {
	return fmt.Sprintf("no payment gateway available (tried %v)", e.Tried)
}

func (e *GatewayUnavailableError) Code() string { return CodeGatewayUnavailable }

// ConfigurationError signals missing credentials or secrets. Never treated as
// a runtime verification failure.
type ConfigurationError struct {
	GatewayCode string
	Missing     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gateway %s misconfigured: missing %s", e.GatewayCode, e.Missing)
}

func (e *ConfigurationError) Code() string { return CodeConfiguration }

// VerificationError signals an invalid webhook signature. The request is
// rejected without any state change.
type VerificationError struct {
	GatewayCode string
	Reason      string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("webhook verification failed for gateway %s: %s", e.GatewayCode, e.Reason)
}

func (e *VerificationError) Code() string { return CodeVerificationFailed }

// PaymentNotFoundError signals a webhook referencing an unknown payment.
// Indicates a correlation bug or a foreign event; never creates state.
type PaymentNotFoundError struct {
	Reference string
}

func (e *PaymentNotFoundError) Error() string {
	return fmt.Sprintf("payment not found for reference %q", e.Reference)
}

func (e *PaymentNotFoundError) Code() string { return CodePaymentNotFound }

// NewPaymentNotFoundError creates a new PaymentNotFoundError
func NewPaymentNotFoundError(reference string) *PaymentNotFoundError {
	return &PaymentNotFoundError{Reference: reference}
}

// InvalidTransitionError signals an attempt to move a payment to a state the
// state machine forbids, e.g. a conflicting terminal-to-terminal transition.
type InvalidTransitionError struct {
	PaymentID uuid.UUID
	From      model.PaymentStatus
	To        model.PaymentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("payment %s: illegal transition %s -> %s", e.PaymentID, e.From, e.To)
}

func (e *InvalidTransitionError) Code() string { return CodeInvalidTransition }

// NewInvalidTransitionError creates a new InvalidTransitionError
func NewInvalidTransitionError(paymentID uuid.UUID, from, to model.PaymentStatus) *InvalidTransitionError {
	return &InvalidTransitionError{PaymentID: paymentID, From: from, To: to}
}
