// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package integrity

import "errors"

// Sentinel errors returned by signature verification. Callers match against
// them with [errors.Is].
var (
	// ErrBadSignature indicates an HMAC mismatch: the message was tampered
	// with or was signed under a different keyphrase.
	ErrBadSignature = errors.New("integrity signature mismatch")

	// ErrMissingSignature indicates that a signature was expected on the
	// message but none was present.
	ErrMissingSignature = errors.New("integrity signature missing")

	// ErrStaleTimestamp indicates a request timestamp outside the ±5 minute
	// replay window.
	ErrStaleTimestamp = errors.New("request timestamp outside allowed window")
)
