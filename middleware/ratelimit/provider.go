package ratelimit

import (
	"context"

	"github.com/tech-arch1tect/accounts/services/clock"
	"go.uber.org/fx"
)

func ProvideRateLimitStore(lc fx.Lifecycle, clk clock.Clock) Store {
	store := NewMemoryStore(clk)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			store.Stop()
			return nil
		},
	})
	return store
}

var Module = fx.Options(
	fx.Provide(ProvideRateLimitStore),
)
