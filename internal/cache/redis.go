package cache

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicing/internal/config"
	"go.uber.org/zap"
)

const defaultInvalidateChan = "invoices:listing:invalidate"

// NewRedisClient returns nil when no Redis address is configured.
func NewRedisClient(cfg config.Config) *redis.Client {
	if !cfg.Redis.Enabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(cfg.Redis.Addr),
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
}

// RedisInvalidator publishes invalidated listing keys so peer replicas drop
// their local copies.
type RedisInvalidator struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisInvalidator(client *redis.Client, channel string, log *zap.Logger) *RedisInvalidator {
	if client == nil {
		return nil
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = defaultInvalidateChan
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisInvalidator{
		client:  client,
		channel: channel,
		log:     log.Named("cache.redis"),
	}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Publish(ctx, r.channel, key).Err()
}

// Subscribe drops entries from local whenever a peer publishes an
// invalidation. It returns when ctx is done.
func (r *RedisInvalidator) Subscribe(ctx context.Context, local *ListingCache) {
	if r == nil || r.client == nil || local == nil {
		return
	}
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = local.Invalidate(ctx, msg.Payload)
			r.log.Debug("listing invalidated by peer", zap.String("key", msg.Payload))
		}
	}
}
