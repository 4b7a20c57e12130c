package cache

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicing/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewListingCache),
	fx.Provide(NewRedisClient),
	fx.Provide(provideRedisInvalidator),
	fx.Provide(NewInvalidator),
	fx.Invoke(registerSubscriber),
)

type Params struct {
	fx.In

	Local  *ListingCache
	Remote *RedisInvalidator
}

// NewInvalidator always clears the local cache first and, when Redis is
// configured, notifies peers after it.
func NewInvalidator(p Params) Invalidator {
	chain := Chain{p.Local}
	if p.Remote != nil {
		chain = append(chain, p.Remote)
	}
	return chain
}

func provideRedisInvalidator(client *redis.Client, cfg config.Config, log *zap.Logger) *RedisInvalidator {
	return NewRedisInvalidator(client, cfg.Redis.Channel, log)
}

func registerSubscriber(lc fx.Lifecycle, remote *RedisInvalidator, local *ListingCache, client *redis.Client) {
	if remote == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go remote.Subscribe(ctx, local)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return client.Close()
		},
	})
}
