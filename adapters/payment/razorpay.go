// Package payment provides payment gateway adapters.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starfeed/starfeed/domain/payment"
	"github.com/starfeed/starfeed/ports"
)

// RazorpayConfig holds Razorpay credentials.
type RazorpayConfig struct {
	KeyID     string // public, sent to clients to open checkout
	KeySecret string // private, used for API auth and signature checks
}

// RazorpayGateway implements ports.PaymentGateway against the Razorpay
// Orders API.
type RazorpayGateway struct {
	config     RazorpayConfig
	httpClient *http.Client
	baseURL    string
}

// NewRazorpayGateway creates a new Razorpay gateway.
func NewRazorpayGateway(config RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.razorpay.com/v1",
	}
}

// Name returns the gateway name.
func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

// AccountID returns the public key id clients use to open checkout.
func (g *RazorpayGateway) AccountID() string {
	return g.config.KeyID
}

// CreateOrder registers an order with Razorpay and returns its id.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/orders", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.config.KeyID, g.config.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("razorpay API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("razorpay returned no order id")
	}
	return result.ID, nil
}

// VerifySignature checks the checkout callback signature.
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return payment.Verify(g.config.KeySecret, gatewayOrderID, paymentID, signature)
}

// Ensure interface compliance.
var _ ports.PaymentGateway = (*RazorpayGateway)(nil)
