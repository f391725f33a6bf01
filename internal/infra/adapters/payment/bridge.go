package payment

import (
	"context"

	"membership-payments/internal/checkout"
	"membership-payments/internal/domain"
)

var _ checkout.Bridge = (*GatewayBridge)(nil)

// GatewayBridge adapts the Razorpay client to the loader's Bridge contract:
// Load checks credentials are present, Callable proves they work against the
// live API.
type GatewayBridge struct {
	gw *RazorpayGateway
}

func NewGatewayBridge(gw *RazorpayGateway) *GatewayBridge { return &GatewayBridge{gw: gw} }

func (b *GatewayBridge) Load(ctx context.Context) error {
	if !b.gw.Configured() {
		return domain.ErrGatewayUnconfigured
	}
	return nil
}

func (b *GatewayBridge) Callable(ctx context.Context) bool { return b.gw.Ping(ctx) }
