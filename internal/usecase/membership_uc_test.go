//go:build !integration

package usecase

import (
	"context"
	"testing"
	"time"

	"membership-payments/internal/config"
	"membership-payments/internal/domain/model"
)

func confirmed(userID string, plan model.Plan) model.ConfirmedPayment {
	return model.ConfirmedPayment{
		PaymentID: "p_1",
		OrderID:   "o_1",
		UserID:    userID,
		Plan:      plan,
		Amount:    plan.Price,
	}
}

func TestMembershipUseCase_Apply(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()
	monthly, _ := catalog.ByTier(model.TierMonthlyPremium)
	yearly, _ := catalog.ByTier(model.TierYearlyPremium)

	t.Run("first purchase starts from now", func(t *testing.T) {
		memberships := newMemMembershipRepo()
		uc := NewMembershipUseCase(memberships, newMemRecordRepo(), config.RenewalReset, newTestLogger())
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		uc.now = func() time.Time { return now }

		m, err := uc.Apply(ctx, nil, confirmed("user-1", monthly))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !m.IsMember || m.Tier != model.TierMonthlyPremium {
			t.Errorf("expected an active monthly membership, got %+v", m)
		}
		if want := now.Add(30 * 24 * time.Hour); !m.ExpiresAt.Equal(want) {
			t.Errorf("expected expiry %v, got %v", want, m.ExpiresAt)
		}
	})

	t.Run("reset policy restarts the term from now", func(t *testing.T) {
		memberships := newMemMembershipRepo()
		uc := NewMembershipUseCase(memberships, newMemRecordRepo(), config.RenewalReset, newTestLogger())
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		uc.now = func() time.Time { return now }

		memberships.Save(ctx, nil, &model.Membership{
			UserID: "user-1", IsMember: true, Tier: model.TierMonthlyPremium,
			ExpiresAt: now.Add(20 * 24 * time.Hour),
		})

		m, err := uc.Apply(ctx, nil, confirmed("user-1", monthly))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if want := now.Add(30 * 24 * time.Hour); !m.ExpiresAt.Equal(want) {
			t.Errorf("expected reset expiry %v, got %v (remaining time discarded)", want, m.ExpiresAt)
		}
	})

	t.Run("extend policy stacks onto the remaining term", func(t *testing.T) {
		memberships := newMemMembershipRepo()
		uc := NewMembershipUseCase(memberships, newMemRecordRepo(), config.RenewalExtend, newTestLogger())
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		uc.now = func() time.Time { return now }

		current := now.Add(20 * 24 * time.Hour)
		memberships.Save(ctx, nil, &model.Membership{
			UserID: "user-1", IsMember: true, Tier: model.TierMonthlyPremium,
			ExpiresAt: current,
		})

		m, err := uc.Apply(ctx, nil, confirmed("user-1", monthly))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if want := current.Add(30 * 24 * time.Hour); !m.ExpiresAt.Equal(want) {
			t.Errorf("expected stacked expiry %v, got %v", want, m.ExpiresAt)
		}
	})

	t.Run("extend policy ignores an expired term", func(t *testing.T) {
		memberships := newMemMembershipRepo()
		uc := NewMembershipUseCase(memberships, newMemRecordRepo(), config.RenewalExtend, newTestLogger())
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		uc.now = func() time.Time { return now }

		memberships.Save(ctx, nil, &model.Membership{
			UserID: "user-1", IsMember: true, Tier: model.TierMonthlyPremium,
			ExpiresAt: now.Add(-24 * time.Hour),
		})

		m, err := uc.Apply(ctx, nil, confirmed("user-1", monthly))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if want := now.Add(30 * 24 * time.Hour); !m.ExpiresAt.Equal(want) {
			t.Errorf("expected fresh term %v, got %v", want, m.ExpiresAt)
		}
	})

	t.Run("upgrade switches tier immediately", func(t *testing.T) {
		memberships := newMemMembershipRepo()
		uc := NewMembershipUseCase(memberships, newMemRecordRepo(), config.RenewalReset, newTestLogger())
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		uc.now = func() time.Time { return now }

		memberships.Save(ctx, nil, &model.Membership{
			UserID: "user-1", IsMember: true, Tier: model.TierMonthlyPremium,
			ExpiresAt: now.Add(10 * 24 * time.Hour),
		})

		m, err := uc.Apply(ctx, nil, confirmed("user-1", yearly))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if m.Tier != model.TierYearlyPremium {
			t.Errorf("expected yearly tier, got %s", m.Tier)
		}
		if want := now.Add(365 * 24 * time.Hour); !m.ExpiresAt.Equal(want) {
			t.Errorf("expected yearly expiry %v, got %v", want, m.ExpiresAt)
		}
	})
}

func TestMembershipUseCase_Status(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown user reads as inactive basic", func(t *testing.T) {
		uc := NewMembershipUseCase(newMemMembershipRepo(), newMemRecordRepo(), config.RenewalReset, newTestLogger())
		uc.now = func() time.Time { return now }
		st, err := uc.Status(ctx, "nobody")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if st.IsActive || st.Tier != model.TierBasic {
			t.Errorf("expected inactive basic status, got %+v", st)
		}
	})

	t.Run("expired membership reads as inactive basic", func(t *testing.T) {
		memberships := newMemMembershipRepo()
		memberships.Save(ctx, nil, &model.Membership{
			UserID: "user-1", IsMember: true, Tier: model.TierMonthlyPremium,
			ExpiresAt: now.Add(-time.Hour),
		})
		uc := NewMembershipUseCase(memberships, newMemRecordRepo(), config.RenewalReset, newTestLogger())
		uc.now = func() time.Time { return now }
		st, _ := uc.Status(ctx, "user-1")
		if st.IsActive || st.Tier != model.TierBasic {
			t.Errorf("expected inactive basic status, got %+v", st)
		}
	})

	t.Run("active membership reports days remaining", func(t *testing.T) {
		memberships := newMemMembershipRepo()
		memberships.Save(ctx, nil, &model.Membership{
			UserID: "user-1", IsMember: true, Tier: model.TierYearlyPremium,
			ExpiresAt: now.Add(10*24*time.Hour + time.Hour),
		})
		uc := NewMembershipUseCase(memberships, newMemRecordRepo(), config.RenewalReset, newTestLogger())
		uc.now = func() time.Time { return now }
		st, _ := uc.Status(ctx, "user-1")
		if !st.IsActive || st.Tier != model.TierYearlyPremium {
			t.Errorf("expected active yearly status, got %+v", st)
		}
		if st.DaysRemaining != 10 {
			t.Errorf("expected 10 days remaining, got %d", st.DaysRemaining)
		}
	})
}

func TestTestUpgradeUseCase(t *testing.T) {
	ctx := context.Background()

	newDeps := func(production bool) (*testUpgradeUC, *verifyTestDeps) {
		deps := newVerifyDeps(production, config.RenewalReset)
		simOrders := NewOrderUseCase(deps.orders, testCatalog(), &mockGateway{name: "simulated", configured: true, simulated: true}, newTestLogger())
		return NewTestUpgradeUseCase(simOrders, deps.uc, production, newTestLogger()), deps
	}

	t.Run("grants a simulated membership outside production", func(t *testing.T) {
		uc, deps := newDeps(false)
		m, err := uc.Upgrade(ctx, "user-1", model.TierMonthlyPremium)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !m.ActiveAt(time.Now()) || m.Tier != model.TierMonthlyPremium {
			t.Errorf("expected active monthly membership, got %+v", m)
		}
		recs, _ := deps.records.ListByUser(ctx, nil, "user-1")
		if len(recs) != 1 || recs[0].Status != model.PaymentRecordStatusSuccessful {
			t.Errorf("expected one successful record in history, got %+v", recs)
		}
	})

	t.Run("refuses in production", func(t *testing.T) {
		uc, _ := newDeps(true)
		if _, err := uc.Upgrade(ctx, "user-1", model.TierMonthlyPremium); err == nil {
			t.Fatal("expected an error in production")
		}
	})
}
