package payment

import (
	"context"
	"fmt"
	"sync"

	"membership-payments/internal/domain/ports/adapter"
)

var _ adapter.CheckoutGateway = (*SimulatedGateway)(nil)

// SimulatedGateway stands in for the real gateway when it is unreachable or
// unconfigured. Orders it produces are flagged simulated so the verifier can
// gate them to non-production; everything downstream of verification runs
// the same code path as a real payment.
type SimulatedGateway struct {
	mu  sync.Mutex
	seq int64
}

func NewSimulatedGateway() *SimulatedGateway { return &SimulatedGateway{} }

func (g *SimulatedGateway) Name() string     { return "simulated" }
func (g *SimulatedGateway) Simulated() bool  { return true }
func (g *SimulatedGateway) Configured() bool { return true }

func (g *SimulatedGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("sim_order_%d", g.seq), "sim_key", nil
}
