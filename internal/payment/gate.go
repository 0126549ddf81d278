// Package payment decides whether a payment may be accepted.
package payment

import "saas-commerce/internal/model"

// CanApprove reports whether a payment with the given method may be accepted.
// Cash is always accepted; QR and transfer payments need a proof artifact.
func CanApprove(method model.PaymentMethod, hasProof bool) bool {
	switch method {
	case model.PaymentCash:
		return true
	case model.PaymentQR, model.PaymentTransfer:
		return hasProof
	}
	return false
}

// Verify is CanApprove as an error.
func Verify(method model.PaymentMethod, proof *string) error {
	if !method.Valid() {
		return model.ValidationError("unknown payment method %q", method)
	}
	if !CanApprove(method, proof != nil && *proof != "") {
		return model.ErrMissingPaymentProof
	}
	return nil
}
