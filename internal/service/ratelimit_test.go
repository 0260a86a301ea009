// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strixun/edge-core/internal/store"
)

func newTestLimiter(buckets map[string]BucketConfig) (*RateLimiter, *time.Time) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	kv := store.NewMemoryKV()
	kv.SetClock(func() time.Time { return now })

	limiter := NewRateLimiter(kv, buckets)
	limiter.SetClock(func() time.Time { return now })

	return limiter, &now
}

func TestRateLimiter_AllowsUpToBudget(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(map[string]BucketConfig{
		"tiny": {Window: time.Minute, Max: 3},
	})

	for want := 2; want >= 0; want-- {
		remaining, err := limiter.Allow(ctx, "tiny", "subject")
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
	}

	_, err := limiter.Allow(ctx, "tiny", "subject")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)

	var limited *RateLimitedError
	require.True(t, errors.As(err, &limited))
	assert.GreaterOrEqual(t, limited.RetryAfter, time.Second)
	assert.LessOrEqual(t, limited.RetryAfter, time.Minute)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	ctx := context.Background()
	limiter, now := newTestLimiter(map[string]BucketConfig{
		"tiny": {Window: time.Minute, Max: 2},
	})

	_, err := limiter.Allow(ctx, "tiny", "subject")
	require.NoError(t, err)

	*now = now.Add(30 * time.Second)
	_, err = limiter.Allow(ctx, "tiny", "subject")
	require.NoError(t, err)

	_, err = limiter.Allow(ctx, "tiny", "subject")
	assert.ErrorIs(t, err, ErrRateLimited)

	// The first request falls out of the window at exactly +60s.
	*now = now.Add(30 * time.Second)
	remaining, err := limiter.Allow(ctx, "tiny", "subject")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiter_SubjectsAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(map[string]BucketConfig{
		"tiny": {Window: time.Minute, Max: 1},
	})

	_, err := limiter.Allow(ctx, "tiny", "alice")
	require.NoError(t, err)

	_, err = limiter.Allow(ctx, "tiny", "alice")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = limiter.Allow(ctx, "tiny", "bob")
	assert.NoError(t, err)
}

func TestRateLimiter_UnknownBucket(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(nil)

	_, err := limiter.Allow(ctx, "no-such-bucket", "subject")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestRateLimiter_DefaultBuckets(t *testing.T) {
	buckets := DefaultBuckets()

	assert.Equal(t, BucketConfig{Window: time.Minute, Max: 100}, buckets[BucketRead])
	assert.Equal(t, BucketConfig{Window: time.Minute, Max: 50}, buckets[BucketCheck])
	assert.Equal(t, BucketConfig{Window: time.Minute, Max: 20}, buckets[BucketWrite])
	assert.Equal(t, BucketConfig{Window: time.Minute, Max: 5}, buckets[BucketAdmin])
	assert.Equal(t, BucketConfig{Window: time.Hour, Max: 3}, buckets[BucketOTPRequest])
}

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "rl:read:cust_1", RateLimitKey(BucketRead, "cust_1"))
}
