package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"pending to completed", PaymentStatusPending, PaymentStatusCompleted, true},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"pending to refunded", PaymentStatusPending, PaymentStatusRefunded, false},
		{"completed to refunded", PaymentStatusCompleted, PaymentStatusRefunded, true},
		{"completed to failed", PaymentStatusCompleted, PaymentStatusFailed, false},
		{"completed to pending", PaymentStatusCompleted, PaymentStatusPending, false},
		{"failed to completed", PaymentStatusFailed, PaymentStatusCompleted, false},
		{"failed to refunded", PaymentStatusFailed, PaymentStatusRefunded, false},
		{"refunded to completed", PaymentStatusRefunded, PaymentStatusCompleted, false},
		{"refunded to failed", PaymentStatusRefunded, PaymentStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.True(t, PaymentStatusCompleted.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusRefunded.IsTerminal())
}

func TestJSONBMerge(t *testing.T) {
	base := JSONB{"a": 1, "b": "keep"}

	merged := base.Merge(JSONB{"b": "replaced", "c": true})

	assert.Equal(t, "replaced", merged["b"])
	assert.Equal(t, true, merged["c"])
	assert.Equal(t, 1, merged["a"])
	// Original is untouched
	assert.Equal(t, "keep", base["b"])

	assert.Equal(t, base, base.Merge(nil))
}
