// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketKV = []byte("kv")

// boltEntry is the on-disk envelope for a single key. ExpiresAt is a unix
// second; zero means the key never expires.
type boltEntry struct {
	Value     []byte `json:"v"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

func (e boltEntry) expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.Unix() >= e.ExpiresAt
}

// BoltKV is a bbolt-backed [KVStore]. All keys live in a single bucket;
// expiry is lazy: expired entries are deleted on the next read that
// touches them, with the background sweeper as the backstop.
type BoltKV struct {
	db *bolt.DB
}

// NewBoltKV opens (or creates) the database file at path and ensures the
// kv bucket exists.
func NewBoltKV(path string) (*BoltKV, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltKV{db: db}, nil
}

// Get implements [KVStore].
func (s *BoltKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	found := false
	expired := false

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketKV).Get([]byte(key))
		if raw == nil {
			return nil
		}

		var entry boltEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("decode entry at %q: %w", key, err)
		}
		if entry.expired(time.Now()) {
			expired = true
			return nil
		}

		value = make([]byte, len(entry.Value))
		copy(value, entry.Value)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if expired {
		// Lazy expiry: drop the dead entry outside the read transaction.
		if err := s.Delete(context.Background(), key); err != nil {
			return nil, false, err
		}
	}

	return value, found, nil
}

// Put implements [KVStore].
func (s *BoltKV) Put(_ context.Context, key string, value []byte, opts PutOptions) error {
	entry := boltEntry{Value: value}
	if expiresAt := resolveExpiry(opts, time.Now()); !expiresAt.IsZero() {
		entry.ExpiresAt = expiresAt.Unix()
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry for %q: %w", key, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), raw)
	})
}

// Delete implements [KVStore].
func (s *BoltKV) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Delete([]byte(key))
	})
}

// List implements [KVStore]. The cursor is the last key of the previous
// page; listing skips (but does not delete) expired entries.
func (s *BoltKV) List(_ context.Context, opts ListOptions) (ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	now := time.Now()
	prefix := []byte(opts.Prefix)
	result := ListResult{Complete: true}

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketKV).Cursor()

		var k, v []byte
		if opts.Cursor != "" {
			k, v = c.Seek([]byte(opts.Cursor))
			if k != nil && string(k) == opts.Cursor {
				k, v = c.Next()
			}
		} else {
			k, v = c.Seek(prefix)
		}

		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var entry boltEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode entry at %q: %w", k, err)
			}
			if entry.expired(now) {
				continue
			}

			if len(result.Keys) == limit {
				result.Cursor = result.Keys[len(result.Keys)-1]
				result.Complete = false
				return nil
			}
			result.Keys = append(result.Keys, string(k))
		}
		return nil
	})
	if err != nil {
		return ListResult{}, err
	}

	return result, nil
}

// Close implements [KVStore].
func (s *BoltKV) Close() error {
	return s.db.Close()
}
