package adapter

import "context"

// CheckoutGateway is the hex port for the external payment gateway. The real
// implementation talks to the provider's REST API; the simulated one stands
// in for it outside production. The strategy is chosen once at flow start so
// the verifier and updater never branch on environment themselves.
type CheckoutGateway interface {
	Name() string

	// Configured reports whether the gateway holds usable credentials. It is
	// the pre-flight behind /payments/get-key.
	Configured() bool

	// CreateOrder registers a payment intent for the given amount and returns
	// the provider order id plus the key material the checkout session needs.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (orderID, keyID string, err error)

	// Simulated marks orders produced by this gateway as test-only.
	Simulated() bool
}
