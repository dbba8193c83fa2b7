package razorpaywebhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scrapmandi/scrapmandi-backend/internal/payments"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
)

type stubResolver struct {
	resolved   []payments.ResolveInput
	failed     []string
	resolveErr error
}

func (s *stubResolver) ResolvePaymentSuccess(ctx context.Context, input payments.ResolveInput) (*payments.Resolution, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	s.resolved = append(s.resolved, input)
	return &payments.Resolution{}, nil
}

func (s *stubResolver) MarkPaymentFailed(ctx context.Context, providerOrderID string) error {
	s.failed = append(s.failed, providerOrderID)
	return nil
}

func capturedEvent(orderID, paymentID string) *razorpay.WebhookEvent {
	event := &razorpay.WebhookEvent{Event: razorpay.EventPaymentCaptured}
	event.Payload.Payment.Entity = razorpay.PaymentEntity{
		ID:      paymentID,
		OrderID: orderID,
		Status:  "captured",
	}
	return event
}

func TestHandleEventRoutesCaptureToResolver(t *testing.T) {
	resolver := &stubResolver{}
	svc, err := NewService(resolver, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.HandleEvent(context.Background(), capturedEvent("order_rzp_1", "pay_rzp_1"))
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(resolver.resolved) != 1 {
		t.Fatalf("expected one resolution, got %d", len(resolver.resolved))
	}
	got := resolver.resolved[0]
	if got.ProviderOrderID != "order_rzp_1" || got.ProviderPaymentID != "pay_rzp_1" {
		t.Fatalf("unexpected resolve input: %+v", got)
	}
	if got.Source != payments.SourceWebhook {
		t.Fatalf("expected webhook source, got %s", got.Source)
	}
}

func TestHandleEventRoutesFailureToResolver(t *testing.T) {
	resolver := &stubResolver{}
	svc, _ := NewService(resolver, nil)

	event := &razorpay.WebhookEvent{Event: razorpay.EventPaymentFailed}
	event.Payload.Payment.Entity = razorpay.PaymentEntity{
		ID:          "pay_rzp_2",
		OrderID:     "order_rzp_2",
		Status:      "failed",
		ErrorCode:   "BAD_REQUEST_ERROR",
		ErrorReason: "payment_declined",
	}

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(resolver.failed) != 1 || resolver.failed[0] != "order_rzp_2" {
		t.Fatalf("expected one failure mark for order_rzp_2, got %v", resolver.failed)
	}
}

func TestHandleEventIgnoresUnsubscribedEvents(t *testing.T) {
	resolver := &stubResolver{}
	svc, _ := NewService(resolver, nil)

	event := &razorpay.WebhookEvent{Event: "refund.processed"}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(resolver.resolved) != 0 || len(resolver.failed) != 0 {
		t.Fatal("expected unsubscribed event to be a no-op")
	}
}

func TestHandleEventRequiresOrderID(t *testing.T) {
	resolver := &stubResolver{}
	svc, _ := NewService(resolver, nil)

	err := svc.HandleEvent(context.Background(), capturedEvent("", "pay_rzp_3"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleEventPropagatesResolverErrors(t *testing.T) {
	resolver := &stubResolver{resolveErr: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	svc, _ := NewService(resolver, nil)

	err := svc.HandleEvent(context.Background(), capturedEvent("order_rzp_4", "pay_rzp_4"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

type stubIdempotencyStore struct {
	keys   map[string]string
	setErr error
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.keys[key]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = "1"
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "sm:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestIdempotencyGuardMarksOnce(t *testing.T) {
	store := &stubIdempotencyStore{keys: make(map[string]string)}
	guard, err := NewIdempotencyGuard(store, time.Hour, "webhook")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	ctx := context.Background()

	duplicate, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if duplicate {
		t.Fatal("first delivery flagged as duplicate")
	}

	duplicate, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if !duplicate {
		t.Fatal("replay not flagged as duplicate")
	}

	if err := guard.Delete(ctx, "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	duplicate, _ = guard.CheckAndMark(ctx, "evt_1")
	if duplicate {
		t.Fatal("expected retry after delete to pass")
	}
}

func TestIdempotencyGuardValidation(t *testing.T) {
	store := &stubIdempotencyStore{keys: make(map[string]string)}

	if _, err := NewIdempotencyGuard(nil, time.Hour, "webhook"); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewIdempotencyGuard(store, time.Hour, ""); err == nil {
		t.Fatal("expected error for empty scope")
	}

	guard, _ := NewIdempotencyGuard(store, time.Hour, "webhook")
	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty event id")
	}
}
