// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package models

// Encryption formats recorded in StoredObjectMeta.EncryptionFormat. The
// format dictates the decode pipeline on download.
const (
	EncryptionFormatV5     = "binary-v5"
	EncryptionFormatV4     = "binary-v4"
	EncryptionFormatLegacy = "legacy"
)

// StoredObjectMeta is the custom metadata kept next to an uploaded blob.
// Objects are immutable once written and are deleted with their owning
// entity.
type StoredObjectMeta struct {
	EncryptionFormat    string `json:"encryptionFormat"`
	SHA256              string `json:"sha256"`
	OriginalContentType string `json:"originalContentType"`
	CustomerID          string `json:"customerId"`
	Size                int64  `json:"size"`
	CreatedAt           string `json:"createdAt"`
}

// OwnerID implements the access-control target used by the entity store.
func (m StoredObjectMeta) OwnerID() string { return m.CustomerID }
