// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(threshold int, resetInterval time.Duration) (*circuitBreaker, *time.Time) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	b := newCircuitBreaker(threshold, resetInterval)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	for i := 0; i < 2; i++ {
		require.NoError(t, b.allow())
		b.failure()
	}
	require.NoError(t, b.allow(), "still closed below the threshold")

	b.failure()
	assert.ErrorIs(t, b.allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureRun(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	b.failure()
	b.failure()
	b.success()
	b.failure()
	b.failure()

	assert.NoError(t, b.allow(), "non-consecutive failures do not open the breaker")
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	b, now := newTestBreaker(1, 30*time.Second)

	b.failure()
	require.ErrorIs(t, b.allow(), ErrCircuitOpen)

	// Still open just before the reset interval elapses.
	*now = now.Add(30*time.Second - time.Millisecond)
	require.ErrorIs(t, b.allow(), ErrCircuitOpen)

	// One probe is admitted; a second concurrent call is rejected.
	*now = now.Add(time.Millisecond)
	require.NoError(t, b.allow())
	require.ErrorIs(t, b.allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_ProbeSuccessCloses(t *testing.T) {
	b, now := newTestBreaker(1, 30*time.Second)

	b.failure()
	*now = now.Add(30 * time.Second)
	require.NoError(t, b.allow())

	b.success()
	assert.NoError(t, b.allow())
	assert.NoError(t, b.allow())
}

func TestCircuitBreaker_ProbeFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, 30*time.Second)

	b.failure()
	*now = now.Add(30 * time.Second)
	require.NoError(t, b.allow())

	b.failure()
	require.ErrorIs(t, b.allow(), ErrCircuitOpen)

	// A fresh reset interval applies after the reopen.
	*now = now.Add(30 * time.Second)
	assert.NoError(t, b.allow())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	b := newCircuitBreaker(0, 0)
	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 30*time.Second, b.resetInterval)
}
