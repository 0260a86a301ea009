// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/models"
)

// migrationBatchSize caps how many keys one List page may return during a
// migration scan.
const migrationBatchSize = 1000

// IndexMerge is one secondary-index entry a transform wants written for the
// migrated entity.
type IndexMerge struct {
	Relationship string
	Parent       string

	// Single marks the entry as a single-valued index (lookup key → one
	// ID) instead of a member of a list index.
	Single bool
}

// TransformResult is what a [TransformFunc] produces for one legacy key.
type TransformResult struct {
	EntityType string
	ID         string
	Data       any
	Indexes    []IndexMerge
}

// TransformFunc converts one legacy (key, value) pair into its canonical
// form. Returning (nil, nil) skips the key.
type TransformFunc func(oldKey string, oldValue []byte) (*TransformResult, error)

// MigrationOptions configures one run of the migration engine.
type MigrationOptions struct {
	Service string
	Prefix  string
	DryRun  bool

	// DeleteOld removes the legacy key after a successful write. Ignored
	// in dry-run mode.
	DeleteOld bool
}

// Migrator rewrites legacy key patterns into canonical entity and index
// keys. Progress is tracked in a [models.MigrationRecord] stored at
// migration:{id}; the record finishes as failed iff any key errored.
type Migrator struct {
	entities *EntityStore
	logger   *logger.Logger
}

// NewMigrator constructs a migration engine over the given entity store.
func NewMigrator(entities *EntityStore, logger *logger.Logger) *Migrator {
	return &Migrator{entities: entities, logger: logger}
}

// Run scans every key under opts.Prefix in batches of up to 1000, feeds
// each raw (key, value) pair to transform, and, outside dry-run, writes
// the canonical entity, merges its indexes (dedup), and optionally deletes
// the legacy key. The finished record is persisted and returned.
func (m *Migrator) Run(ctx context.Context, opts MigrationOptions, transform TransformFunc) (*models.MigrationRecord, error) {
	record := &models.MigrationRecord{
		ID:        fmt.Sprintf("migration_%d", time.Now().UnixNano()),
		Service:   opts.Service,
		Prefix:    opts.Prefix,
		DryRun:    opts.DryRun,
		Status:    models.MigrationRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := m.saveRecord(ctx, record); err != nil {
		return nil, err
	}

	kv := m.entities.KV()
	cursor := ""
	for {
		page, err := kv.List(ctx, ListOptions{Prefix: opts.Prefix, Cursor: cursor, Limit: migrationBatchSize})
		if err != nil {
			return nil, fmt.Errorf("list legacy keys: %w", err)
		}

		for _, key := range page.Keys {
			if err := m.migrateKey(ctx, opts, transform, key); err != nil {
				record.ErrorCount++
				if len(record.Errors) < models.MigrationErrorLimit {
					record.Errors = append(record.Errors, fmt.Sprintf("%s: %v", key, err))
				}
				m.logger.Err(err).Str("key", key).Msg("migration of key failed")
				continue
			}
			record.ProcessedCount++
		}

		if page.Complete {
			break
		}
		cursor = page.Cursor
	}

	record.Status = models.MigrationCompleted
	if record.ErrorCount > 0 {
		record.Status = models.MigrationFailed
	}
	record.FinishedAt = time.Now().UTC()

	if err := m.saveRecord(ctx, record); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("id", record.ID).
		Str("status", record.Status).
		Int("processed", record.ProcessedCount).
		Int("errors", record.ErrorCount).
		Msg("migration finished")

	return record, nil
}

func (m *Migrator) migrateKey(ctx context.Context, opts MigrationOptions, transform TransformFunc, key string) error {
	kv := m.entities.KV()

	value, found, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read legacy value: %w", err)
	}
	if !found {
		// Raced with expiry between list and get; nothing to migrate.
		return nil
	}

	result, err := transform(key, value)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if result == nil {
		return nil
	}

	if opts.DryRun {
		return nil
	}

	if err := m.entities.PutEntity(ctx, opts.Service, result.EntityType, result.ID, result.Data); err != nil {
		return fmt.Errorf("write entity: %w", err)
	}

	for _, idx := range result.Indexes {
		if idx.Single {
			err = m.entities.IndexSetSingle(ctx, opts.Service, idx.Relationship, idx.Parent, result.ID)
		} else {
			err = m.entities.IndexAdd(ctx, opts.Service, idx.Relationship, idx.Parent, result.ID)
		}
		if err != nil {
			return fmt.Errorf("merge index %s:%s: %w", idx.Relationship, idx.Parent, err)
		}
	}

	if opts.DeleteOld {
		if err := kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete legacy key: %w", err)
		}
	}

	return nil
}

func (m *Migrator) saveRecord(ctx context.Context, record *models.MigrationRecord) error {
	if err := PutJSON(ctx, m.entities.KV(), "migration:"+record.ID, record, PutOptions{}); err != nil {
		return fmt.Errorf("save migration record: %w", err)
	}
	return nil
}

// GetMigrationRecord loads a stored migration record by ID.
func (m *Migrator) GetMigrationRecord(ctx context.Context, id string) (*models.MigrationRecord, error) {
	var record models.MigrationRecord
	found, err := GetJSON(ctx, m.entities.KV(), "migration:"+id, &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: migration %s", ErrEntityNotFound, id)
	}
	return &record, nil
}
