package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/scrapmandi/scrapmandi-backend/api/responses"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
	"github.com/scrapmandi/scrapmandi-backend/pkg/metrics"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"

	maxWebhookBody = 1 << 20
)

type webhookService interface {
	HandleEvent(ctx context.Context, event *razorpay.WebhookEvent) error
}

type webhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// RazorpayWebhook receives payment events. The signature is checked against
// the raw body bytes before any parsing. Once the signature is good, every
// failure is acknowledged with a 200 and logged server-side: only signature
// problems should make the provider retry. Processing errors still clear the
// idempotency marker so a redelivery is not swallowed.
func RazorpayWebhook(svc webhookService, verifier webhookVerifier, guard webhookGuard, pm *metrics.PaymentMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || verifier == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := r.Header.Get(signatureHeader)
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidSignature, "webhook signature missing"))
			return
		}
		if !verifier.VerifyWebhookSignature(payload, signature) {
			if pm != nil {
				pm.IncSignatureRejected("webhook")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidSignature, "webhook signature mismatch"))
			return
		}

		event, err := razorpay.ParseWebhookEvent(payload)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "razorpay event unreadable, acknowledged without action", err)
			}
			responses.WriteSuccess(w, nil)
			return
		}

		eventID := r.Header.Get(eventIDHeader)
		if eventID != "" {
			alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
			if err != nil {
				// The resolver is idempotent, so losing the guard only
				// costs redundant work. Process the event anyway.
				if logg != nil {
					logg.Error(ctx, "idempotency check failed, processing event anyway", err)
				}
			} else if alreadyProcessed {
				responses.WriteSuccess(w, nil)
				return
			}
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			if eventID != "" {
				_ = guard.Delete(ctx, eventID)
			}
			if logg != nil {
				logg.Error(logg.WithField(ctx, "event", event.Event),
					"razorpay event handling failed, acknowledged without action", err)
			}
			responses.WriteSuccess(w, nil)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "event", event.Event), "razorpay event processed")
		}
		responses.WriteSuccess(w, nil)
	}
}
