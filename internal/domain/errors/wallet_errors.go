package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientBalanceError is returned when a debit would take a wallet
// below zero. Nothing is mutated when this is returned.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: requested %s, available %s", e.Requested.String(), e.Available.String())
}

func (e *InsufficientBalanceError) Code() string { return CodeInsufficientBalance }

// NewInsufficientBalanceError creates a new InsufficientBalanceError
func NewInsufficientBalanceError(requested, available decimal.Decimal) *InsufficientBalanceError {
	return &InsufficientBalanceError{
		Requested: requested,
		Available: available,
	}
}

// InvalidAmountError is returned for zero or negative ledger amounts
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: must be positive", e.Amount.String())
}

func (e *InvalidAmountError) Code() string { return CodeInvalidAmount }

// NewInvalidAmountError creates a new InvalidAmountError
func NewInvalidAmountError(amount decimal.Decimal) *InvalidAmountError {
	return &InvalidAmountError{Amount: amount}
}
