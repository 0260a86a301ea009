// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"context"
	"sync"
)

// offlineQueueCap bounds the replay backlog.
const offlineQueueCap = 100

// offlineQueue captures requests issued while the client is offline and
// replays them FIFO on reconnect.
type offlineQueue struct {
	mu      sync.Mutex
	pending []Request
}

func newOfflineQueue() *offlineQueue {
	return &offlineQueue{}
}

func (q *offlineQueue) enqueue(req Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= offlineQueueCap {
		return ErrOfflineQueueFull
	}
	q.pending = append(q.pending, req)
	return nil
}

// remove drops a queued request by ID. Cancelling a queued-but-unsent
// request has no other effect.
func (q *offlineQueue) remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, req := range q.pending {
		if req.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (q *offlineQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// drain pops the whole backlog in arrival order.
func (q *offlineQueue) drain() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.pending
	q.pending = nil
	return pending
}

// replay sends the backlog FIFO. A failed replay stops and requeues the
// failed request together with the untried remainder, so nothing is lost
// to a flapping connection.
func (q *offlineQueue) replay(ctx context.Context, send func(context.Context, Request) (*Response, error)) error {
	backlog := q.drain()
	for i, req := range backlog {
		if _, err := send(ctx, req); err != nil {
			q.mu.Lock()
			q.pending = append(backlog[i:], q.pending...)
			q.mu.Unlock()
			return err
		}
	}
	return nil
}
