// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"sync"
	"time"
)

// Cache strategies selectable per request.
const (
	CacheStaleWhileRevalidate = "swr"
	CacheNetworkOnly          = "network-only"
)

type cacheEntry struct {
	resp     *Response
	tags     []string
	storedAt time.Time
}

// responseCache is the per-process GET cache keyed on request
// fingerprints, with tag-based invalidation.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration

	now func() time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &responseCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the cached response and whether it is still fresh. A stale
// entry is still returned (stale-while-revalidate hands it out while the
// background refresh runs).
func (c *responseCache) get(fingerprint string) (resp *Response, fresh, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		return nil, false, false
	}
	return entry.resp, c.now().Sub(entry.storedAt) < c.ttl, true
}

func (c *responseCache) set(fingerprint string, resp *Response, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = &cacheEntry{resp: resp, tags: tags, storedAt: c.now()}
}

// invalidateTags drops every entry carrying any of the given tags.
func (c *responseCache) invalidateTags(tags []string) {
	if len(tags) == 0 {
		return
	}
	tagged := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagged[t] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for fp, entry := range c.entries {
		for _, t := range entry.tags {
			if tagged[t] {
				delete(c.entries, fp)
				break
			}
		}
	}
}
