// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package store implements the persistence substrate of the edge core: a
// minimal TTL-aware key-value interface with in-memory and bbolt backends,
// the canonical-key entity store with secondary indexes and access rules on
// top of it, the legacy-key migration engine, and the encrypted blob store.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// PutOptions controls expiry of a written key. TTL and ExpiresAt are
// mutually exclusive; when both are set, ExpiresAt wins. Zero values mean
// the key never expires.
type PutOptions struct {
	TTL       time.Duration
	ExpiresAt time.Time
}

// ListOptions selects keys by prefix with cursor pagination.
type ListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

// ListResult is one page of a prefix listing. Cursor is opaque and only
// meaningful when Complete is false.
type ListResult struct {
	Keys     []string
	Cursor   string
	Complete bool
}

// KVStore is the minimal key-value contract all higher layers build on.
//
// Writes are read-your-writes within a single caller; global ordering
// across regions is not required. TTL is honoured best-effort: both
// backends expire lazily, so consumers must always re-check expiry on read.
type KVStore interface {
	// Get returns the value at key. found is false when the key is absent
	// or already expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put writes value at key with the given expiry options.
	Put(ctx context.Context, key string, value []byte, opts PutOptions) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns one page of keys with the given prefix, in lexicographic
	// order.
	List(ctx context.Context, opts ListOptions) (ListResult, error)

	// Close releases backend resources.
	Close() error
}

// GetJSON reads key and unmarshals its value into target. Returns false
// when the key is absent.
func GetJSON(ctx context.Context, kv KVStore, key string, target any) (bool, error) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("unmarshal value at %q: %w", key, err)
	}
	return true, nil
}

// PutJSON marshals value and writes it at key.
func PutJSON(ctx context.Context, kv KVStore, key string, value any, opts PutOptions) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %q: %w", key, err)
	}
	return kv.Put(ctx, key, raw, opts)
}

// resolveExpiry converts PutOptions into an absolute expiry instant.
// A zero return means the key never expires.
func resolveExpiry(opts PutOptions, now time.Time) time.Time {
	if !opts.ExpiresAt.IsZero() {
		return opts.ExpiresAt
	}
	if opts.TTL > 0 {
		return now.Add(opts.TTL)
	}
	return time.Time{}
}
