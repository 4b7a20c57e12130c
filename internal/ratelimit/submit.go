package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicing/internal/config"
)

const keySubmit = "invoices:submit:%s"

// SubmitLimiter throttles invoice form submissions per client.
type SubmitLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewSubmitLimiter returns nil when rate limiting is disabled.
func NewSubmitLimiter(cfg config.Config, client *redis.Client) (*SubmitLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		return nil, errors.New("rate limit requires REDIS_ADDR")
	}
	if limitCfg.SubmitRate <= 0 || limitCfg.SubmitBurst <= 0 {
		return nil, errors.New("submit rate limit must be positive")
	}
	return &SubmitLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.SubmitRate,
		burst:  limitCfg.SubmitBurst,
	}, nil
}

func (l *SubmitLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow reports whether client may submit another form now.
func (l *SubmitLimiter) Allow(ctx context.Context, client string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keySubmit, client), l.rate, l.burst)
}
