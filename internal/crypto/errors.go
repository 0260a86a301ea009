// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package crypto

import "errors"

// Tagged errors returned by the primitives and the envelope cipher.
//
// Callers at the HTTP boundary must not leak which of (bad key / bad tag /
// malformed input) caused a failure: everything except
// ErrUnsupportedEnvelopeVersion collapses into ErrDecryptionFailed before it
// leaves the crypto package's decrypt paths.
var (
	// ErrDecryptionFailed is the unified decrypt failure: wrong token, auth
	// tag mismatch, or malformed envelope. Deliberately carries no detail.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrAuthTagMismatch is returned by the low-level AES-GCM wrapper when
	// the ciphertext fails authentication. Internal; the envelope layer
	// converts it to ErrDecryptionFailed.
	ErrAuthTagMismatch = errors.New("authentication tag mismatch")

	// ErrMalformedInput is returned when a blob is too short to contain the
	// declared structure. Internal; converted to ErrDecryptionFailed at the
	// envelope layer.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnsupportedEnvelopeVersion is returned for envelope versions
	// outside {4, 5} before any key derivation is attempted. v3 is
	// rejected explicitly; no decoder for it exists.
	ErrUnsupportedEnvelopeVersion = errors.New("unsupported envelope version")
)
