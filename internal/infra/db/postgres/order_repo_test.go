//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
)

func TestOrderRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewOrderRepo(testPool)

	order := &model.Order{
		ID:        "order_int_1",
		UserID:    "user-1",
		Tier:      model.TierMonthlyPremium,
		Amount:    9900,
		Currency:  "INR",
		KeyID:     "rzp_test_key",
		Status:    model.OrderStatusCreated,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	t.Run("saves and finds an order", func(t *testing.T) {
		cleanup(t)
		if err := repo.Save(ctx, nil, order); err != nil {
			t.Fatalf("save: %v", err)
		}
		found, err := repo.FindByID(ctx, nil, order.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.UserID != order.UserID || found.Amount != order.Amount || found.Tier != order.Tier {
			t.Errorf("round trip mismatch: %+v", found)
		}
		if found.Simulated {
			t.Error("simulated flag must default to false")
		}
	})

	t.Run("updates the status", func(t *testing.T) {
		cleanup(t)
		if err := repo.Save(ctx, nil, order); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := repo.UpdateStatus(ctx, nil, order.ID, model.OrderStatusVerified); err != nil {
			t.Fatalf("update status: %v", err)
		}
		found, _ := repo.FindByID(ctx, nil, order.ID)
		if found.Status != model.OrderStatusVerified {
			t.Errorf("expected verified, got %s", found.Status)
		}
	})

	t.Run("missing order reads as not found", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "absent"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
