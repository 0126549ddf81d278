package payment

import (
	"testing"

	"saas-commerce/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCanApprove(t *testing.T) {
	tests := []struct {
		method   model.PaymentMethod
		hasProof bool
		want     bool
	}{
		{model.PaymentCash, false, true},
		{model.PaymentCash, true, true},
		{model.PaymentQR, false, false},
		{model.PaymentQR, true, true},
		{model.PaymentTransfer, false, false},
		{model.PaymentTransfer, true, true},
		{model.PaymentMethod("CARD"), true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, CanApprove(tt.method, tt.hasProof))
		})
	}
}

func TestVerify(t *testing.T) {
	ref := "ab12.png"
	empty := ""

	assert.NoError(t, Verify(model.PaymentCash, nil))
	assert.NoError(t, Verify(model.PaymentTransfer, &ref))
	assert.ErrorIs(t, Verify(model.PaymentQR, nil), model.ErrMissingPaymentProof)
	assert.ErrorIs(t, Verify(model.PaymentQR, &empty), model.ErrMissingPaymentProof)
	assert.ErrorIs(t, Verify(model.PaymentMethod("CARD"), &ref), model.ErrValidation)
}
