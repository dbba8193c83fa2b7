package controllers

import (
	"net/http"

	"github.com/scrapmandi/scrapmandi-backend/api/responses"
	"github.com/scrapmandi/scrapmandi-backend/api/validators"
	"github.com/scrapmandi/scrapmandi-backend/internal/payments"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
	"github.com/scrapmandi/scrapmandi-backend/pkg/metrics"
)

type signatureVerifier interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

type verifyPaymentRequest struct {
	ProviderOrderID   string `json:"razorpay_order_id" validate:"required"`
	ProviderPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature         string `json:"razorpay_signature" validate:"required"`
}

// VerifyPayment is the client-side confirmation path. The checkout widget
// posts the provider's signed triple here after a capture; the webhook may
// deliver the same payment before or after, in any order.
func VerifyPayment(resolver payments.Resolver, verifier signatureVerifier, pm *metrics.PaymentMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil || verifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !verifier.VerifyPaymentSignature(body.ProviderOrderID, body.ProviderPaymentID, body.Signature) {
			if pm != nil {
				pm.IncSignatureRejected(payments.SourceClient)
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInvalidSignature, "payment signature mismatch"))
			return
		}

		resolution, err := resolver.ResolvePaymentSuccess(r.Context(), payments.ResolveInput{
			ProviderOrderID:   body.ProviderOrderID,
			ProviderPaymentID: body.ProviderPaymentID,
			Source:            payments.SourceClient,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"order":             resolution.Order,
			"already_confirmed": resolution.AlreadyConfirmed,
		})
	}
}

// ProviderKey hands the frontend the public key id it needs to open the
// payment widget.
func ProviderKey(verifier signatureVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if verifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"key_id":   verifier.KeyID(),
			"currency": verifier.Currency(),
		})
	}
}
