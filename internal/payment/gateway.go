package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order is a gateway order awaiting payment.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates payment orders.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (Order, error)
}

// RazorpayClient calls the Razorpay orders API.
type RazorpayClient struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	HTTP      *http.Client
	Skip      bool
}

// NewRazorpayClient creates a client. Without credentials it runs in skip
// mode and returns synthetic orders.
func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		Skip:      keyID == "" || keySecret == "",
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// MinorUnits converts an amount to the smallest currency unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder posts a new order for amount in currency.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (Order, error) {
	minor := MinorUnits(amount)
	if c.Skip {
		return Order{
			ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
			Amount:   minor,
			Currency: currency,
			Receipt:  receipt,
			Status:   "created",
		}, nil
	}

	body, _ := json.Marshal(map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  receipt,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return Order{}, fmt.Errorf("payment gateway error %s: %s", resp.Status, string(bodyBytes))
	}

	var out Order
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Order{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.ID == "" {
		return Order{}, fmt.Errorf("payment gateway returned no order id")
	}
	return out, nil
}
