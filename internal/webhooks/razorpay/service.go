package razorpaywebhook

import (
	"context"

	"github.com/scrapmandi/scrapmandi-backend/internal/payments"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
)

type paymentResolver interface {
	ResolvePaymentSuccess(ctx context.Context, input payments.ResolveInput) (*payments.Resolution, error)
	MarkPaymentFailed(ctx context.Context, providerOrderID string) error
}

// Service routes verified Razorpay events into the payment resolver. The
// resolver is idempotent, so replayed or out-of-order deliveries are safe
// even when the idempotency guard misses.
type Service struct {
	resolver paymentResolver
	logg     *logger.Logger
}

func NewService(resolver paymentResolver, logg *logger.Logger) (*Service, error) {
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment resolver required")
	}
	return &Service{resolver: resolver, logg: logg}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *razorpay.WebhookEvent) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event required")
	}

	switch event.Event {
	case razorpay.EventPaymentCaptured:
		entity := event.Payload.Payment.Entity
		if entity.OrderID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment order id missing")
		}
		resolution, err := s.resolver.ResolvePaymentSuccess(ctx, payments.ResolveInput{
			ProviderOrderID:   entity.OrderID,
			ProviderPaymentID: entity.ID,
			Source:            payments.SourceWebhook,
		})
		if err != nil {
			return err
		}
		if resolution.AlreadyConfirmed && s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "provider_order_id", entity.OrderID),
				"payment already confirmed, webhook was a replay or lost the race")
		}
		return nil

	case razorpay.EventPaymentFailed:
		entity := event.Payload.Payment.Entity
		if entity.OrderID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment order id missing")
		}
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"provider_order_id": entity.OrderID,
				"error_code":        entity.ErrorCode,
				"error_reason":      entity.ErrorReason,
			}), "payment capture failed")
		}
		return s.resolver.MarkPaymentFailed(ctx, entity.OrderID)

	default:
		// Unsubscribed events still get a 200 so Razorpay stops retrying.
		return nil
	}
}
