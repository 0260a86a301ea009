// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultListLimit = 1000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryKV is an in-memory [KVStore] used in tests and single-process
// deployments. Expired entries are removed lazily on read and on listing.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is swappable so tests can control expiry.
	now func() time.Time
}

// NewMemoryKV constructs an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Test hook.
func (m *MemoryKV) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get implements [KVStore].
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Put implements [KVStore].
func (m *MemoryKV) Put(_ context.Context, key string, value []byte, opts PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	m.entries[key] = memoryEntry{
		value:     stored,
		expiresAt: resolveExpiry(opts, m.now()),
	}
	return nil
}

// Delete implements [KVStore].
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// List implements [KVStore]. Keys are returned in lexicographic order; the
// cursor is the last key of the previous page.
func (m *MemoryKV) List(_ context.Context, opts ListOptions) (ListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	keys := make([]string, 0, len(m.entries))
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
			continue
		}
		if strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	page := make([]string, 0, limit)
	for _, key := range keys {
		if opts.Cursor != "" && key <= opts.Cursor {
			continue
		}
		page = append(page, key)
		if len(page) == limit {
			break
		}
	}

	result := ListResult{Keys: page, Complete: true}
	if len(page) == limit && len(keys) > 0 && page[len(page)-1] != keys[len(keys)-1] {
		result.Cursor = page[len(page)-1]
		result.Complete = false
	}
	return result, nil
}

// Close implements [KVStore]. No-op for the in-memory backend.
func (m *MemoryKV) Close() error { return nil }
