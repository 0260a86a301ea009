// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"context"
	"sync"
)

// cancelRegistry tracks the cancel function of every live request by ID.
type cancelRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{cancels: make(map[string]context.CancelFunc)}
}

func (r *cancelRegistry) register(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[id] = cancel
}

func (r *cancelRegistry) drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancels, id)
}

// cancel aborts one request. Returns false for an unknown or finished ID.
func (r *cancelRegistry) cancel(id string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[id]
	delete(r.cancels, id)
	r.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// cancelAll aborts every live request.
func (r *cancelRegistry) cancelAll() {
	r.mu.Lock()
	cancels := r.cancels
	r.cancels = make(map[string]context.CancelFunc)
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
