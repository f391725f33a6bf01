package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"membership-payments/internal/domain"
	"membership-payments/internal/usecase"
)

var _ usecase.Locker = (*VerifyLocker)(nil)

// VerifyLocker serializes payment verification per user across instances.
type VerifyLocker struct {
	cli *redis.Client
}

func NewVerifyLocker(c *Client) *VerifyLocker {
	return &VerifyLocker{cli: c.cli}
}

func (l *VerifyLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < 5; i++ {
		ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			continue
		}
		if ok {
			return token, nil
		}
		time.Sleep(50 * time.Millisecond) // wait before retrying
	}
	return "", domain.ErrOperationFailed
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *VerifyLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result()
	return err
}
