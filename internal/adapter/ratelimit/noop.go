// Package ratelimit holds login limiters. The redis subpackage is used when a
// Redis address is configured; Noop otherwise.
package ratelimit

import (
	"context"

	"go-todo-api/internal/core/ports"
)

// Noop never throttles.
type Noop struct{}

var _ ports.LoginLimiter = Noop{}

func (Noop) Allow(context.Context, string) error { return nil }
func (Noop) Reset(context.Context, string) error { return nil }
