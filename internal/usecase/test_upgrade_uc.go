package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
)

var _ TestUpgradeUseCase = (*testUpgradeUC)(nil)

// TestUpgradeUseCase lets development and QA exercise the full downstream
// flow (verification, membership update, history) without a live gateway.
// Refuses outright in production.
type TestUpgradeUseCase interface {
	Upgrade(ctx context.Context, userID string, tier model.Tier) (*model.Membership, error)
}

type testUpgradeUC struct {
	// orders must be bound to the simulated gateway strategy; the produced
	// orders carry Simulated=true and flow through the normal verifier.
	orders     OrderUseCase
	verify     VerifyUseCase
	production bool
	log        *zerolog.Logger
}

func NewTestUpgradeUseCase(orders OrderUseCase, verify VerifyUseCase, production bool, log *zerolog.Logger) *testUpgradeUC {
	return &testUpgradeUC{orders: orders, verify: verify, production: production, log: log}
}

func (u *testUpgradeUC) Upgrade(ctx context.Context, userID string, tier model.Tier) (*model.Membership, error) {
	if u.production {
		return nil, domain.ErrSimulationForbidden
	}

	order, err := u.orders.Create(ctx, userID, tier)
	if err != nil {
		return nil, fmt.Errorf("simulated order: %w", err)
	}

	// No signature: the verifier accepts simulated orders without one, and
	// state handling downstream stays identical to a real payment.
	res := model.PaymentResult{
		PaymentID: "sim_pay_" + uuid.NewString(),
		OrderID:   order.ID,
	}
	m, _, err := u.verify.Verify(ctx, userID, res)
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", userID).Str("tier", string(tier)).Msg("test upgrade applied")
	return m, nil
}
