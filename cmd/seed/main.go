// Command seed populates a local database with a demo user that already holds
// an active membership and a short payment history, so the status and history
// endpoints return something during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"membership-payments/internal/config"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/repository"
	pg "membership-payments/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	userID := flag.String("user", "demo-user", "user to seed")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	recordRepo := pg.NewPaymentRecordRepo(pool)
	membershipRepo := pg.NewMembershipRepo(pool)

	// If the user already has history, do nothing.
	existing, err := recordRepo.ListByUser(ctx, repository.NoTX, *userID)
	if err != nil {
		log.Fatalf("list records: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d payment records already present for %s. No changes.\n", len(existing), *userID)
		return
	}

	now := time.Now().UTC()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	history := []struct {
		age    time.Duration
		tier   model.Tier
		amount int64
		status model.PaymentRecordStatus
	}{
		{90 * 24 * time.Hour, model.TierMonthlyPremium, 9900, model.PaymentRecordStatusSuccessful},
		{60 * 24 * time.Hour, model.TierMonthlyPremium, 9900, model.PaymentRecordStatusFailed},
		{10 * 24 * time.Hour, model.TierYearlyPremium, 99900, model.PaymentRecordStatusSuccessful},
	}
	for i, h := range history {
		at := now.Add(-h.age)
		rec := &model.PaymentRecord{
			ID:        ulid.MustNew(ulid.Timestamp(at), entropy).String(),
			PaymentID: fmt.Sprintf("seed_pay_%d", i+1),
			OrderID:   fmt.Sprintf("seed_order_%d", i+1),
			UserID:    *userID,
			Tier:      h.tier,
			Amount:    h.amount,
			Currency:  cfg.Payment.Currency,
			Status:    h.status,
			CreatedAt: at,
		}
		if err := recordRepo.Append(ctx, repository.NoTX, rec); err != nil {
			log.Fatalf("append record %s: %v", rec.PaymentID, err)
		}
		fmt.Printf("seeded payment %s (%s, %d %s, %s)\n", rec.PaymentID, rec.Tier, rec.Amount, rec.Currency, rec.Status)
	}

	expires := now.Add(-10 * 24 * time.Hour).Add(365 * 24 * time.Hour)
	m := &model.Membership{
		UserID:    *userID,
		IsMember:  true,
		Tier:      model.TierYearlyPremium,
		ExpiresAt: expires,
		UpdatedAt: now,
	}
	if err := membershipRepo.Save(ctx, repository.NoTX, m); err != nil {
		log.Fatalf("save membership: %v", err)
	}
	fmt.Printf("seeded membership for %s: %s until %s\n", *userID, m.Tier, expires.Format(time.RFC3339))
}
