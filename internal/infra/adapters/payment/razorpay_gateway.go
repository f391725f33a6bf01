package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/ports/adapter"
)

var _ adapter.CheckoutGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements the checkout gateway port against the Razorpay
// orders REST API (basic auth with key id/secret).
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   "https://api.razorpay.com/v1",
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *RazorpayGateway) Name() string     { return "razorpay" }
func (g *RazorpayGateway) Simulated() bool  { return false }
func (g *RazorpayGateway) Configured() bool { return g.keyID != "" && g.keySecret != "" }

// CreateOrder registers a payment intent and returns the provider order id
// plus the public key id the checkout dialog needs.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, string, error) {
	if !g.Configured() {
		return "", "", domain.ErrGatewayUnconfigured
	}

	payload := map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(b))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrOrderCreationFailed, err)
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrOrderCreationFailed, err)
	}
	defer resp.Body.Close()

	var out struct {
		ID    string `json:"id"`
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("%w: decode response: %v", domain.ErrOrderCreationFailed, err)
	}
	if resp.StatusCode != http.StatusOK || out.ID == "" {
		if out.Error.Description != "" {
			return "", "", fmt.Errorf("%w: %s", domain.ErrOrderCreationFailed, out.Error.Description)
		}
		return "", "", fmt.Errorf("%w: unexpected status %s", domain.ErrOrderCreationFailed, resp.Status)
	}
	return out.ID, g.keyID, nil
}

// Ping checks the credentials actually work, not just that they are present.
// The checkout bridge loader uses it as its callable check.
func (g *RazorpayGateway) Ping(ctx context.Context) bool {
	if !g.Configured() {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/orders?count=1", nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
