package observability

import (
	"context"
	"errors"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

// InstrumentedLimiter is a decorator to intercept limiter calls and record metrics.
type InstrumentedLimiter struct {
	inner ports.LoginLimiter
}

var _ ports.LoginLimiter = (*InstrumentedLimiter)(nil)

// NewInstrumentedLimiter creates a new instrumented limiter wrapper.
func NewInstrumentedLimiter(inner ports.LoginLimiter) *InstrumentedLimiter {
	return &InstrumentedLimiter{inner: inner}
}

func (l *InstrumentedLimiter) Allow(ctx context.Context, key string) error {
	err := l.inner.Allow(ctx, key)
	switch {
	case err == nil:
		loginAttempts.Inc()
	case errors.Is(err, auth.ErrRateLimited):
		loginThrottled.Inc()
	}
	return err
}

func (l *InstrumentedLimiter) Reset(ctx context.Context, key string) error {
	return l.inner.Reset(ctx, key)
}
