// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) (*responseCache, *time.Time) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := newResponseCache(ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestResponseCache_FreshStaleAndMiss(t *testing.T) {
	c, now := newTestCache(time.Minute)

	_, _, ok := c.get("fp")
	require.False(t, ok)

	stored := &Response{Status: http.StatusOK, Body: []byte(`{"n":1}`)}
	c.set("fp", stored, nil)

	resp, fresh, ok := c.get("fp")
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Same(t, stored, resp)

	// Entries go stale at exactly the TTL boundary but are still served.
	*now = now.Add(time.Minute)
	resp, fresh, ok = c.get("fp")
	require.True(t, ok)
	assert.False(t, fresh)
	assert.Same(t, stored, resp)
}

func TestResponseCache_SetRefreshesAge(t *testing.T) {
	c, now := newTestCache(time.Minute)

	c.set("fp", &Response{Status: http.StatusOK}, nil)
	*now = now.Add(time.Minute)
	c.set("fp", &Response{Status: http.StatusOK}, nil)

	_, fresh, ok := c.get("fp")
	require.True(t, ok)
	assert.True(t, fresh)
}

func TestResponseCache_InvalidateTags(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.set("things", &Response{Status: http.StatusOK}, []string{"things"})
	c.set("things-page2", &Response{Status: http.StatusOK}, []string{"things", "paged"})
	c.set("others", &Response{Status: http.StatusOK}, []string{"others"})
	c.set("untagged", &Response{Status: http.StatusOK}, nil)

	c.invalidateTags([]string{"things"})

	_, _, ok := c.get("things")
	assert.False(t, ok)
	_, _, ok = c.get("things-page2")
	assert.False(t, ok)
	_, _, ok = c.get("others")
	assert.True(t, ok)
	_, _, ok = c.get("untagged")
	assert.True(t, ok)
}

func TestResponseCache_InvalidateNoTagsIsNoop(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.set("fp", &Response{Status: http.StatusOK}, []string{"things"})

	c.invalidateTags(nil)

	_, _, ok := c.get("fp")
	assert.True(t, ok)
}
