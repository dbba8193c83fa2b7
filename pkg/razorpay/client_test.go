package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scrapmandi/scrapmandi-backend/pkg/config"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:       baseURL,
		keyID:         "rzp_test_key",
		keySecret:     "key-secret",
		webhookSecret: "webhook-secret",
		currency:      "INR",
		httpClient:    &http.Client{Timeout: time.Second},
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	ctx := context.Background()
	cfg := config.RazorpayConfig{KeySecret: "s", WebhookSecret: "w"}
	if _, err := NewClient(ctx, cfg, nil); err == nil {
		t.Fatalf("expected error for missing key id")
	}
	cfg = config.RazorpayConfig{KeyID: "k", WebhookSecret: "w"}
	if _, err := NewClient(ctx, cfg, nil); err == nil {
		t.Fatalf("expected error for missing key secret")
	}
	cfg = config.RazorpayConfig{KeyID: "k", KeySecret: "s"}
	if _, err := NewClient(ctx, cfg, nil); err == nil {
		t.Fatalf("expected error for missing webhook secret")
	}
}

func TestCreateOrder(t *testing.T) {
	var gotPath, gotAuthUser string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuthUser, _, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_abc123",
			"amount":   125000,
			"currency": "INR",
			"receipt":  "ord-1",
			"status":   "created",
		})
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	order, err := client.CreateOrder(context.Background(), CreateOrderParams{
		Amount:  125000,
		Receipt: "ord-1",
		Notes:   map[string]string{"order_id": "ord-1"},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.ID != "order_abc123" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if gotPath != "/v1/orders" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuthUser != "rzp_test_key" {
		t.Fatalf("expected basic auth with key id, got %q", gotAuthUser)
	}
	notes, ok := gotPayload["notes"].(map[string]any)
	if !ok || notes["order_id"] != "ord-1" {
		t.Fatalf("expected order id note, got %v", gotPayload["notes"])
	}
}

func TestCreateOrderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount exceeds maximum",
			},
		})
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderParams{Amount: 100, Receipt: "r"})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "BAD_REQUEST_ERROR" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	client := testClient("http://unused")
	if _, err := client.CreateOrder(context.Background(), CreateOrderParams{Amount: 0}); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	client := testClient("")

	mac := hmac.New(sha256.New, []byte("key-secret"))
	mac.Write([]byte("order_abc|pay_xyz"))
	valid := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifyPaymentSignature("order_abc", "pay_xyz", valid) {
		t.Fatalf("expected valid signature to verify")
	}
	if client.VerifyPaymentSignature("order_abc", "pay_xyz", valid+"00") {
		t.Fatalf("expected tampered signature to fail")
	}
	if client.VerifyPaymentSignature("order_other", "pay_xyz", valid) {
		t.Fatalf("expected signature for different order to fail")
	}
	if client.VerifyPaymentSignature("", "pay_xyz", valid) {
		t.Fatalf("expected empty order id to fail")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := testClient("")
	body := []byte(`{"event":"payment.captured"}`)

	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifyWebhookSignature(body, valid) {
		t.Fatalf("expected valid webhook signature to verify")
	}
	// One byte of body drift must invalidate the digest.
	if client.VerifyWebhookSignature(append(body, ' '), valid) {
		t.Fatalf("expected modified body to fail verification")
	}
	if client.VerifyWebhookSignature(body, "") {
		t.Fatalf("expected empty signature to fail")
	}
}
