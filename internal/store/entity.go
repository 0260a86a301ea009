// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// indexPrefix is the first segment of every index key.
const indexPrefix = "idx"

// EntityKey builds the single canonical storage address of an entity:
// {service}:{entity}:{id}.
func EntityKey(service, entity, id string) string {
	return service + ":" + entity + ":" + id
}

// IndexKey builds an auxiliary lookup key:
// idx:{service}:{relationship}:{parent}.
func IndexKey(service, relationship, parent string) string {
	return indexPrefix + ":" + service + ":" + relationship + ":" + parent
}

// ParseEntityKey splits a canonical entity key into its three components.
// Keys that do not split into exactly three parts, or whose first segment
// is the index prefix, are rejected with [ErrMalformedKey].
func ParseEntityKey(key string) (service, entity, id string, err error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] == indexPrefix || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	return parts[0], parts[1], parts[2], nil
}

// ParseIndexKey splits an index key into its components. Keys that do not
// have exactly four parts with the idx prefix are rejected with
// [ErrMalformedKey].
func ParseIndexKey(key string) (service, relationship, parent string, err error) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 || parts[0] != indexPrefix || parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	return parts[1], parts[2], parts[3], nil
}

// EntityStore provides canonical-key entity persistence with secondary
// indexes on top of a [KVStore].
//
// Index updates after entity writes are not atomic across keys: a crash
// between PutEntity and IndexAdd leaves a dangling entity without an index
// entry. The migration engine and the background sweeper are the repair
// mechanisms.
type EntityStore struct {
	kv KVStore

	// now is swappable so tests can pin updatedAt stamps.
	now func() time.Time
}

// NewEntityStore wraps kv in an entity store.
func NewEntityStore(kv KVStore) *EntityStore {
	return &EntityStore{kv: kv, now: time.Now}
}

// SetClock replaces the store's time source. Test hook.
func (s *EntityStore) SetClock(now func() time.Time) { s.now = now }

// KV exposes the underlying key-value store for callers that need raw
// access (the migration engine, the sweeper).
func (s *EntityStore) KV() KVStore { return s.kv }

// GetEntity loads the entity at {service}:{entity}:{id} into target.
// Returns false when the entity does not exist.
func (s *EntityStore) GetEntity(ctx context.Context, service, entity, id string, target any) (bool, error) {
	return GetJSON(ctx, s.kv, EntityKey(service, entity, id), target)
}

// PutEntity writes the entity at its canonical key, stamping the updatedAt
// field to the current time (ISO-8601 UTC). data is any JSON-serialisable
// value; the stamp is applied on the serialised form so every entity type
// gets it without cooperation.
func (s *EntityStore) PutEntity(ctx context.Context, service, entity, id string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", EntityKey(service, entity, id), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("entity %s is not a JSON object: %w", EntityKey(service, entity, id), err)
	}

	stamp, _ := json.Marshal(s.now().UTC().Format(time.RFC3339Nano))
	fields["updatedAt"] = stamp

	stamped, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal stamped entity: %w", err)
	}

	return s.kv.Put(ctx, EntityKey(service, entity, id), stamped, PutOptions{})
}

// DeleteEntity removes the entity's canonical key.
func (s *EntityStore) DeleteEntity(ctx context.Context, service, entity, id string) error {
	return s.kv.Delete(ctx, EntityKey(service, entity, id))
}

// GetEntities loads a batch of entities in parallel. The result slice is
// position-aligned with ids; missing entities leave a nil slot.
func (s *EntityStore) GetEntities(ctx context.Context, service, entity string, ids []string) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			raw, found, err := s.kv.Get(ctx, EntityKey(service, entity, id))
			if err != nil {
				errs[i] = err
				return
			}
			if found {
				results[i] = raw
			}
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// GetExistingEntities is [EntityStore.GetEntities] with nil slots stripped.
func (s *EntityStore) GetExistingEntities(ctx context.Context, service, entity string, ids []string) ([]json.RawMessage, error) {
	all, err := s.GetEntities(ctx, service, entity, ids)
	if err != nil {
		return nil, err
	}

	existing := make([]json.RawMessage, 0, len(all))
	for _, raw := range all {
		if raw != nil {
			existing = append(existing, raw)
		}
	}
	return existing, nil
}

// PutEntities writes a batch of entities in parallel.
func (s *EntityStore) PutEntities(ctx context.Context, service, entity string, batch map[string]any) error {
	errs := make(chan error, len(batch))

	var wg sync.WaitGroup
	for id, data := range batch {
		wg.Add(1)
		go func(id string, data any) {
			defer wg.Done()
			if err := s.PutEntity(ctx, service, entity, id, data); err != nil {
				errs <- err
			}
		}(id, data)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		return err
	}
	return nil
}

// DeleteEntities removes a batch of entities in parallel.
func (s *EntityStore) DeleteEntities(ctx context.Context, service, entity string, ids []string) error {
	errs := make(chan error, len(ids))

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.DeleteEntity(ctx, service, entity, id); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		return err
	}
	return nil
}

// IndexGet returns the ordered child-ID list at an index key. An absent
// index reads as empty.
func (s *EntityStore) IndexGet(ctx context.Context, service, relationship, parent string) ([]string, error) {
	var ids []string
	if _, err := GetJSON(ctx, s.kv, IndexKey(service, relationship, parent), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// IndexAdd appends id to the index, deduplicating on insert: adding an ID
// that is already present leaves the index unchanged.
func (s *EntityStore) IndexAdd(ctx context.Context, service, relationship, parent, id string) error {
	ids, err := s.IndexGet(ctx, service, relationship, parent)
	if err != nil {
		return err
	}

	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	return PutJSON(ctx, s.kv, IndexKey(service, relationship, parent), append(ids, id), PutOptions{})
}

// IndexRemove deletes id from the index, compacting the list. The key
// itself is deleted when the last entry goes.
func (s *EntityStore) IndexRemove(ctx context.Context, service, relationship, parent, id string) error {
	ids, err := s.IndexGet(ctx, service, relationship, parent)
	if err != nil {
		return err
	}

	compacted := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			compacted = append(compacted, existing)
		}
	}
	if len(compacted) == len(ids) {
		return nil
	}

	if len(compacted) == 0 {
		return s.kv.Delete(ctx, IndexKey(service, relationship, parent))
	}
	return PutJSON(ctx, s.kv, IndexKey(service, relationship, parent), compacted, PutOptions{})
}

// IndexSet replaces the whole index list.
func (s *EntityStore) IndexSet(ctx context.Context, service, relationship, parent string, ids []string) error {
	if len(ids) == 0 {
		return s.kv.Delete(ctx, IndexKey(service, relationship, parent))
	}
	return PutJSON(ctx, s.kv, IndexKey(service, relationship, parent), ids, PutOptions{})
}

// IndexHas reports whether id is present in the index.
func (s *EntityStore) IndexHas(ctx context.Context, service, relationship, parent, id string) (bool, error) {
	ids, err := s.IndexGet(ctx, service, relationship, parent)
	if err != nil {
		return false, err
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

// IndexCount returns the number of entries in the index.
func (s *EntityStore) IndexCount(ctx context.Context, service, relationship, parent string) (int, error) {
	ids, err := s.IndexGet(ctx, service, relationship, parent)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// IndexSetSingle writes a single-valued index entry (lookupKey → one ID).
func (s *EntityStore) IndexSetSingle(ctx context.Context, service, relationship, lookupKey, id string) error {
	return PutJSON(ctx, s.kv, IndexKey(service, relationship, lookupKey), id, PutOptions{})
}

// IndexGetSingle reads a single-valued index entry. Returns false when the
// entry is absent.
func (s *EntityStore) IndexGetSingle(ctx context.Context, service, relationship, lookupKey string) (string, bool, error) {
	var id string
	found, err := GetJSON(ctx, s.kv, IndexKey(service, relationship, lookupKey), &id)
	return id, found, err
}

// IndexDeleteSingle removes a single-valued index entry.
func (s *EntityStore) IndexDeleteSingle(ctx context.Context, service, relationship, lookupKey string) error {
	return s.kv.Delete(ctx, IndexKey(service, relationship, lookupKey))
}
