package webhooks

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
)

type stubWebhookService struct {
	err    error
	events []*razorpay.WebhookEvent
}

func (s *stubWebhookService) HandleEvent(ctx context.Context, event *razorpay.WebhookEvent) error {
	s.events = append(s.events, event)
	return s.err
}

type stubVerifier struct {
	valid bool
}

func (s stubVerifier) VerifyWebhookSignature(body []byte, signature string) bool {
	return s.valid
}

type stubGuard struct {
	marked  map[string]bool
	deleted []string
	err     error
}

func newStubGuard() *stubGuard {
	return &stubGuard{marked: make(map[string]bool)}
}

func (s *stubGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.marked[eventID] {
		return true, nil
	}
	s.marked[eventID] = true
	return false, nil
}

func (s *stubGuard) Delete(ctx context.Context, eventID string) error {
	s.deleted = append(s.deleted, eventID)
	delete(s.marked, eventID)
	return nil
}

const capturedBody = `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_x1","order_id":"order_x1","status":"captured"}}}}`

func postWebhook(t *testing.T, handler http.HandlerFunc, body, eventID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader([]byte(body)))
	req.Header.Set("X-Razorpay-Signature", "sig")
	if eventID != "" {
		req.Header.Set("X-Razorpay-Event-Id", eventID)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestWebhookAcknowledgesUnknownOrder(t *testing.T) {
	svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodeNotFound, "no order for provider order id")}
	guard := newStubGuard()
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, guard, nil, nil)

	resp := postWebhook(t, handler, capturedBody, "evt_1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown order, got %d", resp.Code)
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected event handed to service, got %d", len(svc.events))
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt_1" {
		t.Fatalf("expected idempotency marker cleared, got %v", guard.deleted)
	}
}

func TestWebhookAcknowledgesValidationFailure(t *testing.T) {
	svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodeValidation, "payment order id missing")}
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, newStubGuard(), nil, nil)

	resp := postWebhook(t, handler, capturedBody, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for unprocessable payload, got %d", resp.Code)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{}
	handler := RazorpayWebhook(svc, stubVerifier{valid: false}, newStubGuard(), nil, nil)

	resp := postWebhook(t, handler, capturedBody, "evt_2")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad signature, got %d", resp.Code)
	}
	if len(svc.events) != 0 {
		t.Fatal("event with bad signature reached the service")
	}
}

func TestWebhookAcknowledgesUnreadablePayload(t *testing.T) {
	svc := &stubWebhookService{}
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, newStubGuard(), nil, nil)

	resp := postWebhook(t, handler, `not json`, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for unreadable payload, got %d", resp.Code)
	}
	if len(svc.events) != 0 {
		t.Fatal("unreadable payload reached the service")
	}
}

func TestWebhookSkipsDuplicateDelivery(t *testing.T) {
	svc := &stubWebhookService{}
	guard := newStubGuard()
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, guard, nil, nil)

	if resp := postWebhook(t, handler, capturedBody, "evt_3"); resp.Code != http.StatusOK {
		t.Fatalf("first delivery failed: %d", resp.Code)
	}
	if resp := postWebhook(t, handler, capturedBody, "evt_3"); resp.Code != http.StatusOK {
		t.Fatalf("duplicate delivery failed: %d", resp.Code)
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected exactly one handled event, got %d", len(svc.events))
	}
}

func TestWebhookProcessesEventWhenGuardIsDown(t *testing.T) {
	svc := &stubWebhookService{}
	guard := newStubGuard()
	guard.err = pkgerrors.New(pkgerrors.CodeDependency, "redis down")
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, guard, nil, nil)

	resp := postWebhook(t, handler, capturedBody, "evt_4")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 when guard is down, got %d", resp.Code)
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected event processed despite guard failure, got %d", len(svc.events))
	}
}
