// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strixun/edge-core/models"
)

func TestDetectBlobFormat(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		want        string
		wantErr     bool
	}{
		{"v5 first byte", []byte{5, 16, 12, 32}, "application/octet-stream", models.EncryptionFormatV5, false},
		{"v4 first byte", []byte{4, 16, 12, 32}, "application/octet-stream", models.EncryptionFormatV4, false},
		{"legacy json", []byte(`{"iv":"...","data":"..."}`), "application/json", models.EncryptionFormatLegacy, false},
		{"empty payload", nil, "application/json", "", true},
		{"unknown binary", []byte{9, 9, 9}, "application/octet-stream", "", true},
		{"text without json type", []byte("hello"), "text/plain", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectBlobFormat(tt.data, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlobStore_PutGet(t *testing.T) {
	ctx := context.Background()
	blobs := NewBlobStore(NewMemoryKV())

	data := []byte{5, 16, 12, 32, 0xAA, 0xBB}
	meta := models.StoredObjectMeta{
		EncryptionFormat:    models.EncryptionFormatV5,
		SHA256:              "abc123",
		OriginalContentType: "image/png",
		CustomerID:          "cust_1",
	}

	require.NoError(t, blobs.Put(ctx, "obj_1", data, meta))

	gotData, gotMeta, err := blobs.Get(ctx, "obj_1")
	require.NoError(t, err)
	assert.Equal(t, data, gotData)
	assert.Equal(t, models.EncryptionFormatV5, gotMeta.EncryptionFormat)
	assert.Equal(t, "cust_1", gotMeta.CustomerID)
	assert.Equal(t, int64(len(data)), gotMeta.Size)
	assert.NotEmpty(t, gotMeta.CreatedAt)
}

func TestBlobStore_ObjectsAreImmutable(t *testing.T) {
	ctx := context.Background()
	blobs := NewBlobStore(NewMemoryKV())

	meta := models.StoredObjectMeta{CustomerID: "cust_1"}
	require.NoError(t, blobs.Put(ctx, "obj_1", []byte{5, 1}, meta))

	err := blobs.Put(ctx, "obj_1", []byte{5, 2}, meta)
	assert.Error(t, err)

	// Original bytes are untouched.
	data, _, err := blobs.Get(ctx, "obj_1")
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 1}, data)
}

func TestBlobStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	blobs := NewBlobStore(NewMemoryKV())

	_, _, err := blobs.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestBlobStore_Delete(t *testing.T) {
	ctx := context.Background()
	blobs := NewBlobStore(NewMemoryKV())

	require.NoError(t, blobs.Put(ctx, "obj_1", []byte{5, 1}, models.StoredObjectMeta{CustomerID: "cust_1"}))
	require.NoError(t, blobs.Delete(ctx, "obj_1"))

	_, _, err := blobs.Get(ctx, "obj_1")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	// Deleting again is harmless.
	assert.NoError(t, blobs.Delete(ctx, "obj_1"))
}
