// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"container/heap"
	"context"
	"sync"
)

// requestQueue is a bounded concurrency gate with priority admission.
// Up to max requests run at once; the rest wait, and freed slots go to
// the highest-priority waiter (FIFO within one priority).
type requestQueue struct {
	mu       sync.Mutex
	inFlight int
	max      int
	waiters  waiterHeap
	seq      uint64
}

func newRequestQueue(max int) *requestQueue {
	if max <= 0 {
		max = 6
	}
	return &requestQueue{max: max}
}

type queueWaiter struct {
	priority int
	seq      uint64
	ready    chan struct{}
	index    int
}

// acquire blocks until a slot is free or ctx is done. A cancelled waiter
// leaves the queue without effect.
func (q *requestQueue) acquire(ctx context.Context, priority int) error {
	q.mu.Lock()
	if q.inFlight < q.max {
		q.inFlight++
		q.mu.Unlock()
		return nil
	}

	w := &queueWaiter{priority: priority, seq: q.seq, ready: make(chan struct{})}
	q.seq++
	heap.Push(&q.waiters, w)
	q.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		if w.index >= 0 {
			heap.Remove(&q.waiters, w.index)
			q.mu.Unlock()
			return ctx.Err()
		}
		q.mu.Unlock()
		// The slot was already granted between cancellation and lock
		// acquisition; hand it back.
		q.release()
		return ctx.Err()
	}
}

// release frees one slot, admitting the best waiter if any.
func (q *requestQueue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.waiters.Len() > 0 {
		w := heap.Pop(&q.waiters).(*queueWaiter)
		close(w.ready)
		return
	}
	q.inFlight--
}

// waiterHeap orders by priority descending, then arrival order.
type waiterHeap []*queueWaiter

func (h waiterHeap) Len() int { return len(h) }

func (h waiterHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h waiterHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *waiterHeap) Push(x any) {
	w := x.(*queueWaiter)
	w.index = len(*h)
	*h = append(*h, w)
}

func (h *waiterHeap) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.index = -1
	*h = old[:n-1]
	return w
}
