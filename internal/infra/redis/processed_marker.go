package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"membership-payments/internal/usecase"
)

var _ usecase.ProcessedMarker = (*ProcessedMarker)(nil)

// ProcessedMarker answers "was this payment id already settled" without a
// database round-trip. Advisory only: the payment_records unique index is the
// real guarantee, so a cold cache or evicted key is harmless.
type ProcessedMarker struct {
	cli *redis.Client
	ttl time.Duration
}

func NewProcessedMarker(c *Client, ttl time.Duration) *ProcessedMarker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ProcessedMarker{cli: c.cli, ttl: ttl}
}

func (m *ProcessedMarker) Seen(ctx context.Context, paymentID string) bool {
	n, err := m.cli.Exists(ctx, "payment:done:"+paymentID).Result()
	return err == nil && n > 0
}

func (m *ProcessedMarker) Mark(ctx context.Context, paymentID string) {
	_ = m.cli.Set(ctx, "payment:done:"+paymentID, "1", m.ttl).Err()
}
