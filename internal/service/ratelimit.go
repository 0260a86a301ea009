// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/models"
)

// Rate-limit bucket names used across the HTTP surface.
const (
	BucketRead       = "read"
	BucketCheck      = "check"
	BucketWrite      = "write"
	BucketAdmin      = "admin"
	BucketOTPRequest = "otp-request"
)

// BucketConfig is the window and budget of one rate-limit bucket.
type BucketConfig struct {
	Window time.Duration
	Max    int
}

// DefaultBuckets holds the stock bucket configuration. The OTP bucket does
// not stack with the generic buckets: OTP endpoints consult only
// otp-request.
func DefaultBuckets() map[string]BucketConfig {
	return map[string]BucketConfig{
		BucketRead:       {Window: time.Minute, Max: 100},
		BucketCheck:      {Window: time.Minute, Max: 50},
		BucketWrite:      {Window: time.Minute, Max: 20},
		BucketAdmin:      {Window: time.Minute, Max: 5},
		BucketOTPRequest: {Window: time.Hour, Max: 3},
	}
}

// RateLimiter is a sliding-window counter over the KV store. Each bucket
// keeps the exact timestamps of accepted requests at rl:{bucket}:{subject}
// with a TTL of twice the window, so abandoned subjects age out on their
// own. Timestamp lists trade memory for exactness, which is the right
// trade for the low-volume buckets this limiter guards; counters live only
// in KV so no in-process locks are needed.
type RateLimiter struct {
	kv      store.KVStore
	buckets map[string]BucketConfig

	// now is swappable so tests can walk the window boundary.
	now func() time.Time
}

// NewRateLimiter constructs a limiter with the given bucket table.
func NewRateLimiter(kv store.KVStore, buckets map[string]BucketConfig) *RateLimiter {
	if buckets == nil {
		buckets = DefaultBuckets()
	}
	return &RateLimiter{kv: kv, buckets: buckets, now: time.Now}
}

// SetClock replaces the limiter's time source. Test hook.
func (l *RateLimiter) SetClock(now func() time.Time) { l.now = now }

// Allow records one request for (bucket, subject) if the budget permits.
//
// Returns the remaining budget after this request. When the budget is
// spent, the returned [RateLimitedError] carries how long the caller must
// wait for the oldest in-window request to fall out.
//
// A request at exactly now-window no longer counts; one ε inside the
// window still does.
func (l *RateLimiter) Allow(ctx context.Context, bucket, subject string) (remaining int, err error) {
	cfg, ok := l.buckets[bucket]
	if !ok {
		return 0, fmt.Errorf("unknown rate-limit bucket %q", bucket)
	}

	key := RateLimitKey(bucket, subject)
	now := l.now()
	windowStart := now.Add(-cfg.Window)

	var record models.RateBucket
	if _, err := store.GetJSON(ctx, l.kv, key, &record); err != nil {
		return 0, err
	}

	inWindow := make([]time.Time, 0, len(record.Requests)+1)
	for _, ts := range record.Requests {
		if ts.After(windowStart) {
			inWindow = append(inWindow, ts)
		}
	}

	if len(inWindow) >= cfg.Max {
		oldest := inWindow[0]
		for _, ts := range inWindow[1:] {
			if ts.Before(oldest) {
				oldest = ts
			}
		}
		retryAfter := oldest.Add(cfg.Window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return 0, &RateLimitedError{RetryAfter: retryAfter}
	}

	record.Requests = append(inWindow, now)
	record.ResetAt = now.Add(cfg.Window)

	if err := store.PutJSON(ctx, l.kv, key, record, store.PutOptions{TTL: 2 * cfg.Window}); err != nil {
		return 0, err
	}

	return cfg.Max - len(record.Requests), nil
}

// RateLimitKey builds the KV address of one bucket counter.
func RateLimitKey(bucket, subject string) string {
	return "rl:" + bucket + ":" + subject
}
