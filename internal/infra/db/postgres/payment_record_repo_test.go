//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
)

func testRecord(paymentID string, at time.Time) *model.PaymentRecord {
	return &model.PaymentRecord{
		ID:        ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		PaymentID: paymentID,
		OrderID:   "order_1",
		UserID:    "user-1",
		Tier:      model.TierMonthlyPremium,
		Amount:    9900,
		Currency:  "INR",
		Status:    model.PaymentRecordStatusSuccessful,
		CreatedAt: at,
	}
}

func TestPaymentRecordRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPaymentRecordRepo(testPool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("appends and finds by payment id", func(t *testing.T) {
		cleanup(t)
		rec := testRecord("pay_1", now)
		if err := repo.Append(ctx, nil, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
		found, err := repo.FindByPaymentID(ctx, nil, "pay_1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.ID != rec.ID || found.Amount != rec.Amount || found.Status != rec.Status {
			t.Errorf("round trip mismatch: %+v", found)
		}
	})

	t.Run("duplicate payment id maps to ErrAlreadyProcessed", func(t *testing.T) {
		cleanup(t)
		if err := repo.Append(ctx, nil, testRecord("pay_1", now)); err != nil {
			t.Fatalf("first append: %v", err)
		}
		err := repo.Append(ctx, nil, testRecord("pay_1", now.Add(time.Second)))
		if !errors.Is(err, domain.ErrAlreadyProcessed) {
			t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
		}
	})

	t.Run("lists a user's history newest first", func(t *testing.T) {
		cleanup(t)
		for i, id := range []string{"pay_old", "pay_mid", "pay_new"} {
			if err := repo.Append(ctx, nil, testRecord(id, now.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Fatalf("append %s: %v", id, err)
			}
		}
		other := testRecord("pay_other", now)
		other.UserID = "user-2"
		if err := repo.Append(ctx, nil, other); err != nil {
			t.Fatalf("append other: %v", err)
		}

		recs, err := repo.ListByUser(ctx, nil, "user-1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("expected 3 records, got %d", len(recs))
		}
		if recs[0].PaymentID != "pay_new" || recs[2].PaymentID != "pay_old" {
			t.Errorf("expected newest-first ordering, got %s..%s", recs[0].PaymentID, recs[2].PaymentID)
		}
	})

	t.Run("missing payment id reads as not found", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByPaymentID(ctx, nil, "absent"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
