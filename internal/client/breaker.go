// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"sync"
	"time"
)

// Breaker states.
const (
	breakerClosed = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker opens after a run of consecutive failures, rejects calls
// for a reset interval, then admits a single half-open probe. The breaker
// is per-process; workers in different regions may disagree.
type circuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	resetInterval    time.Duration

	state               int
	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool

	now func() time.Time
}

func newCircuitBreaker(failureThreshold int, resetInterval time.Duration) *circuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if resetInterval <= 0 {
		resetInterval = 30 * time.Second
	}
	return &circuitBreaker{
		failureThreshold: failureThreshold,
		resetInterval:    resetInterval,
		now:              time.Now,
	}
}

// allow reports whether a call may proceed right now.
func (b *circuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return nil

	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.resetInterval {
			return ErrCircuitOpen
		}
		b.state = breakerHalfOpen
		b.probeInFlight = true
		return nil

	default: // half-open: one probe at a time
		if b.probeInFlight {
			return ErrCircuitOpen
		}
		b.probeInFlight = true
		return nil
	}
}

func (b *circuitBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = breakerClosed
	b.consecutiveFailures = 0
	b.probeInFlight = false
}

func (b *circuitBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.probeInFlight = false

	if b.state == breakerHalfOpen || b.consecutiveFailures >= b.failureThreshold {
		b.state = breakerOpen
		b.openedAt = b.now()
	}
}
