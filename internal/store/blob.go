// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/strixun/edge-core/models"
)

// Key prefixes of the blob store. Object bytes and metadata are separate
// keys so metadata reads never pull the payload.
const (
	blobDataPrefix = "blob:data:"
	blobMetaPrefix = "blob:meta:"
)

// DetectBlobFormat inspects the first byte of an upload to choose the
// decode pipeline: 5 → binary-v5, 4 → binary-v4, otherwise the legacy
// JSON-encrypted format when the MIME type says so. Anything else is
// rejected with [ErrUnknownFormat].
func DetectBlobFormat(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrUnknownFormat)
	}

	switch data[0] {
	case 5:
		return models.EncryptionFormatV5, nil
	case 4:
		return models.EncryptionFormatV4, nil
	}

	if strings.HasPrefix(contentType, "application/json") {
		return models.EncryptionFormatLegacy, nil
	}

	return "", fmt.Errorf("%w: first byte 0x%02x, content type %q", ErrUnknownFormat, data[0], contentType)
}

// BlobStore persists immutable encrypted objects with their custom
// metadata. The stored bytes are the raw client envelope: the server never
// keeps plaintext at rest.
type BlobStore struct {
	kv KVStore
}

// NewBlobStore wraps kv in a blob store.
func NewBlobStore(kv KVStore) *BlobStore {
	return &BlobStore{kv: kv}
}

// Put stores the object bytes and metadata under id. Objects are immutable:
// writing an existing id is rejected.
func (b *BlobStore) Put(ctx context.Context, id string, data []byte, meta models.StoredObjectMeta) error {
	if _, found, err := b.kv.Get(ctx, blobMetaPrefix+id); err != nil {
		return err
	} else if found {
		return fmt.Errorf("object %s already exists", id)
	}

	meta.Size = int64(len(data))
	meta.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	if err := b.kv.Put(ctx, blobDataPrefix+id, data, PutOptions{}); err != nil {
		return err
	}
	if err := PutJSON(ctx, b.kv, blobMetaPrefix+id, meta, PutOptions{}); err != nil {
		// Roll the data key back so a failed metadata write does not leave
		// an unaddressable payload behind.
		_ = b.kv.Delete(ctx, blobDataPrefix+id)
		return err
	}
	return nil
}

// Get returns the raw stored envelope and its metadata.
func (b *BlobStore) Get(ctx context.Context, id string) ([]byte, models.StoredObjectMeta, error) {
	var meta models.StoredObjectMeta
	found, err := GetJSON(ctx, b.kv, blobMetaPrefix+id, &meta)
	if err != nil {
		return nil, meta, err
	}
	if !found {
		return nil, meta, fmt.Errorf("%w: object %s", ErrEntityNotFound, id)
	}

	data, found, err := b.kv.Get(ctx, blobDataPrefix+id)
	if err != nil {
		return nil, meta, err
	}
	if !found {
		return nil, meta, fmt.Errorf("%w: object %s payload", ErrEntityNotFound, id)
	}

	return data, meta, nil
}

// Delete removes the object and its metadata. Called when the owning
// entity goes away.
func (b *BlobStore) Delete(ctx context.Context, id string) error {
	if err := b.kv.Delete(ctx, blobDataPrefix+id); err != nil {
		return err
	}
	return b.kv.Delete(ctx, blobMetaPrefix+id)
}
