// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration values are incomplete or invalid.
var (
	// ErrInvalidJWTSecret indicates a missing or too-short JWT_SECRET.
	// The secret must be at least 32 bytes.
	ErrInvalidJWTSecret = errors.New("JWT_SECRET must be set and at least 32 bytes")

	// ErrMissingIntegrityKeyphrase indicates that the service-mesh HMAC
	// keyphrase (NETWORK_INTEGRITY_KEYPHRASE) is not configured.
	ErrMissingIntegrityKeyphrase = errors.New("NETWORK_INTEGRITY_KEYPHRASE must be set")

	// ErrInvalidEnvironment indicates an unrecognised ENVIRONMENT value.
	ErrInvalidEnvironment = errors.New("ENVIRONMENT must be development, test or production")
)
