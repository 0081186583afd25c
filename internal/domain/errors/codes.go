package errors

// Error codes surfaced to upstream layers so they can distinguish
// "retry later" from "cannot proceed" from "internal anomaly".
const (
	CodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	CodeConfiguration       = "CONFIGURATION_ERROR"
	CodeAdapter             = "ADAPTER_ERROR"
	CodeVerificationFailed  = "VERIFICATION_FAILED"
	CodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
)
