// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import "errors"

var (
	// ErrCircuitOpen short-circuits calls while the breaker cools down.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrOfflineQueued reports that the request was captured by the
	// offline queue for later replay instead of being sent.
	ErrOfflineQueued = errors.New("client offline, request queued for replay")

	// ErrOfflineQueueFull reports a dropped request: the offline queue is
	// bounded and full.
	ErrOfflineQueueFull = errors.New("offline queue full")

	// ErrRequestCancelled reports a request aborted through the
	// cancellation registry.
	ErrRequestCancelled = errors.New("request cancelled")
)
