package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scrapmandi/scrapmandi-backend/pkg/config"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

var (
	errKeyIDRequired         = errors.New("razorpay key id is required")
	errKeySecretRequired     = errors.New("razorpay key secret is required")
	errWebhookSecretRequired = errors.New("razorpay webhook secret is required")
)

// Client is a thin HTTP wrapper over the Razorpay Orders API plus the
// signature verification used by checkout callbacks and webhooks.
type Client struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
	httpClient    *http.Client
	logg          *logger.Logger
}

// Order is the subset of Razorpay's order object the marketplace reads.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrderParams carries the provider order request. Amount is in the
// currency's smallest unit (paise for INR).
type CreateOrderParams struct {
	Amount  int64
	Receipt string
	Notes   map[string]string
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// APIError is returned for non-2xx provider responses.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay: %s (%s, http %d)", e.Description, e.Code, e.StatusCode)
}

// NewClient validates the configured credentials and returns a client.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		currency:      cfg.Currency,
		httpClient:    &http.Client{Timeout: timeout},
		logg:          logg,
	}, nil
}

// KeyID returns the publishable key id checkout clients embed.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency returns the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder registers a provider order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	if params.Amount <= 0 {
		return nil, errors.New("razorpay: order amount must be positive")
	}

	payload := map[string]any{
		"amount":   params.Amount,
		"currency": c.currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		payload["notes"] = params.Notes
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling razorpay orders api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading razorpay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed apiError
		_ = json.Unmarshal(raw, &parsed)
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Code:        parsed.Error.Code,
			Description: parsed.Error.Description,
		}
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decoding razorpay order: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("razorpay: order response missing id")
	}
	return &order, nil
}

// VerifyPaymentSignature checks the checkout callback signature, an
// HMAC-SHA256 hex digest of "orderID|paymentID" under the key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := signHex([]byte(orderID+"|"+paymentID), c.keySecret)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// exact raw request body. Callers must pass the body bytes unmodified.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if len(body) == 0 || signature == "" {
		return false
	}
	expected := signHex(body, c.webhookSecret)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

func signHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
