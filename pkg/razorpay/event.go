package razorpay

import (
	"encoding/json"
	"fmt"
)

// Webhook events the backend subscribes to. Everything else is ignored.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// WebhookEvent is the envelope Razorpay posts to webhook endpoints.
type WebhookEvent struct {
	Event     string         `json:"event"`
	AccountID string         `json:"account_id"`
	CreatedAt int64          `json:"created_at"`
	Payload   WebhookPayload `json:"payload"`
}

// WebhookPayload nests the affected entity under its type name.
type WebhookPayload struct {
	Payment struct {
		Entity PaymentEntity `json:"entity"`
	} `json:"payment"`
}

// PaymentEntity is the payment object carried by payment.* events.
type PaymentEntity struct {
	ID          string            `json:"id"`
	OrderID     string            `json:"order_id"`
	Status      string            `json:"status"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	ErrorCode   string            `json:"error_code"`
	ErrorReason string            `json:"error_reason"`
	Notes       map[string]string `json:"notes"`
}

// ParseWebhookEvent decodes a raw webhook body. Signature verification is the
// caller's job and must run against the exact same bytes.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if event.Event == "" {
		return nil, fmt.Errorf("webhook event name missing")
	}
	return &event, nil
}
