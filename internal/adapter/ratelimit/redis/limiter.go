package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

const Prefix = "login:attempts:"

// Limiter counts login attempts per key and blocks the key once more than
// maxAttempts were made without a successful login, until cooldown has passed
// since the first attempt in the window.
type Limiter struct {
	client      *redis.Client
	maxAttempts int64
	cooldown    time.Duration
}

// Ensure Limiter implements ports.LoginLimiter
var _ ports.LoginLimiter = (*Limiter)(nil)

func NewLimiter(addr string, maxAttempts int, cooldown time.Duration) *Limiter {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Limiter{
		client:      rdb,
		maxAttempts: int64(maxAttempts),
		cooldown:    cooldown,
	}
}

// Allow counts this attempt with INCR and decides on the returned value, so
// concurrent attempts for one key never get past the budget.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, Prefix+key)
	// Only the first attempt starts the window.
	pipe.ExpireNX(ctx, Prefix+key, l.cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to count login attempt: %w", err)
	}
	if incr.Val() > l.maxAttempts {
		return auth.ErrRateLimited
	}
	return nil
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, Prefix+key).Err()
}

func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *Limiter) Close() error {
	return l.client.Close()
}
