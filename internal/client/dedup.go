// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
)

// Fingerprint identifies a request for dedup and cache purposes: method,
// path, sorted query and body hash.
func Fingerprint(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Method))
	h.Write([]byte{'\n'})
	h.Write([]byte(req.Path))
	h.Write([]byte{'\n'})
	h.Write([]byte(req.Query.Encode()))
	h.Write([]byte{'\n'})
	if req.Body != nil {
		if raw, err := json.Marshal(req.Body); err == nil {
			h.Write(raw)
		}
	}
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}

// inflightCall is one leader fetch with attached waiters.
type inflightCall struct {
	done chan struct{}
	resp *Response
	err  error

	mu      sync.Mutex
	waiters int
	cancel  context.CancelFunc
}

// detach removes one waiter; the underlying fetch is aborted once nobody
// is left waiting for it.
func (c *inflightCall) detach() {
	c.mu.Lock()
	c.waiters--
	abandoned := c.waiters <= 0
	c.mu.Unlock()
	if abandoned && c.cancel != nil {
		c.cancel()
	}
}

func (c *inflightCall) attach() {
	c.mu.Lock()
	c.waiters++
	c.mu.Unlock()
}

// dedupGroup coalesces concurrent identical fetches: exactly one fetch is
// in flight per fingerprint, and every waiter observes the same response.
type dedupGroup struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

func newDedupGroup() *dedupGroup {
	return &dedupGroup{calls: make(map[string]*inflightCall)}
}

// do runs fn once per fingerprint. Late arrivals wait for the in-flight
// result; a cancelled waiter detaches without killing the fetch unless it
// was the last one.
func (g *dedupGroup) do(ctx context.Context, key string, fn func(ctx context.Context) (*Response, error)) (*Response, error) {
	g.mu.Lock()
	if call, ok := g.calls[key]; ok {
		call.attach()
		g.mu.Unlock()

		select {
		case <-call.done:
			return call.resp, call.err
		case <-ctx.Done():
			call.detach()
			return nil, ctx.Err()
		}
	}

	// The leader's fetch survives the leader's own cancellation as long
	// as other waiters remain attached.
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	call := &inflightCall{done: make(chan struct{}), waiters: 1, cancel: cancel}
	g.calls[key] = call
	g.mu.Unlock()

	go func() {
		resp, err := fn(fetchCtx)

		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()

		call.resp, call.err = resp, err
		close(call.done)
		cancel()
	}()

	select {
	case <-call.done:
		return call.resp, call.err
	case <-ctx.Done():
		call.detach()
		return nil, ctx.Err()
	}
}
