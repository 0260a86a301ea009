// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package store

import "errors"

// Sentinel errors returned by the entity store and the blob store. Callers
// match against them with [errors.Is].
var (
	// ErrMalformedKey is returned by the key parsers when a key does not
	// split into exactly 3 (entity) or 4 (index) colon-separated parts.
	ErrMalformedKey = errors.New("malformed storage key")

	// ErrEntityNotFound is returned when a required entity is absent.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrForbidden is returned by AssertAccess when the access context does
	// not satisfy the ownership or visibility rules. Maps to HTTP 403.
	ErrForbidden = errors.New("access denied")

	// ErrUnknownFormat is returned by the blob store when the first byte of
	// an upload matches no known encryption format.
	ErrUnknownFormat = errors.New("unknown blob encryption format")
)
