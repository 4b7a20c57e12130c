package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/invoicing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmitLimiterDisabled(t *testing.T) {
	l, err := NewSubmitLimiter(config.Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, l)
	assert.False(t, l.Enabled())

	d, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestNewSubmitLimiterRequiresRedis(t *testing.T) {
	_, err := NewSubmitLimiter(config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true, SubmitRate: 1, SubmitBurst: 5},
	}, nil)
	assert.Error(t, err)
}

func TestNilTokenBucket(t *testing.T) {
	assert.Nil(t, NewTokenBucket(nil))

	var b *TokenBucket
	_, err := b.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestParseDecision(t *testing.T) {
	d, err := parseDecision([]interface{}{int64(1), "4"}, 2)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
	assert.Zero(t, d.RetryAfter)

	d, err = parseDecision([]interface{}{int64(0), "0.5"}, 2)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 250*time.Millisecond, d.RetryAfter)

	_, err = parseDecision([]interface{}{int64(1)}, 2)
	assert.ErrorIs(t, err, errBadResponse)

	_, err = parseDecision([]interface{}{"1", "4"}, 2)
	assert.ErrorIs(t, err, errBadResponse)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, bucketTTL(1, 5))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
	assert.Equal(t, time.Second, bucketTTL(0, 1))
}
