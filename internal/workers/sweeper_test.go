// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package workers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/store"
)

func TestSweeper_ReclaimsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	kv := store.NewMemoryKV()
	kv.SetClock(func() time.Time { return now })

	require.NoError(t, kv.Put(ctx, "auth:otp:aaaa", []byte(`{}`), store.PutOptions{TTL: 10 * time.Minute}))
	require.NoError(t, kv.Put(ctx, "auth:session:jti_1", []byte(`{}`), store.PutOptions{TTL: time.Hour}))
	require.NoError(t, kv.Put(ctx, "rl:read:cust_1", []byte(`[]`), store.PutOptions{TTL: 2 * time.Minute}))
	require.NoError(t, kv.Put(ctx, "customer:profile:cust_1", []byte(`{}`), store.PutOptions{}))

	s := NewSweeper(ctx, kv, time.Minute, logger.Nop())

	// Half an hour later the OTP and rate-limit keys are dead.
	now = now.Add(30 * time.Minute)
	s.sweep()

	_, found, err := kv.Get(ctx, "auth:otp:aaaa")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = kv.Get(ctx, "rl:read:cust_1")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = kv.Get(ctx, "auth:session:jti_1")
	require.NoError(t, err)
	assert.True(t, found, "live sessions survive the sweep")

	_, found, err = kv.Get(ctx, "customer:profile:cust_1")
	require.NoError(t, err)
	assert.True(t, found, "entities outside the expiring prefixes are never touched")
}

func TestSweeper_PagesThroughLargePrefixes(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()

	const total = sweepPageSize + 250
	for i := 0; i < total; i++ {
		key := fmt.Sprintf("auth:session:jti_%04d", i)
		require.NoError(t, kv.Put(ctx, key, []byte(`{}`), store.PutOptions{TTL: time.Hour}))
	}

	s := NewSweeper(ctx, kv, time.Minute, logger.Nop())
	touched, err := s.sweepPrefix("auth:session:")
	require.NoError(t, err)
	assert.Equal(t, total, touched)
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	kv := store.NewMemoryKV()

	s := NewSweeper(ctx, kv, 10*time.Millisecond, logger.Nop())
	s.Run()

	require.NoError(t, kv.Put(context.Background(), "auth:otp:bbbb", []byte(`{}`), store.PutOptions{TTL: time.Nanosecond}))

	// The ticking sweeper reclaims the key without any reader touching it.
	assert.Eventually(t, func() bool {
		_, found, err := kv.Get(context.Background(), "auth:otp:bbbb")
		return err == nil && !found
	}, time.Second, 10*time.Millisecond)

	cancel()
}
